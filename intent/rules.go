package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/c360/semquery/ontology"
)

// triggerTable maps trigger phrases to an intent kind. Tables are scanned in
// declaration order, most specific kind first, so "hvor mange sensorer"
// resolves to a count before "hvilke" could claim it as a list.
type triggerTable struct {
	kind    Kind
	phrases []string
}

var triggersByLanguage = map[ontology.Language][]triggerTable{
	ontology.LanguageNorwegian: {
		{KindQueryCount, []string{"hvor mange", "antall", "totalt antall", "tell"}},
		{KindMutationCreate, []string{"opprett", "lag en", "lag et", "legg til", "registrer"}},
		{KindQueryList, []string{"vis alle", "list opp", "list alle", "hvilke", "gi meg alle", "hent alle", "alle"}},
		{KindQuerySingle, []string{"hva er", "vis meg", "finn", "hent", "gi meg", "detaljer om", "informasjon om"}},
	},
	ontology.LanguageEnglish: {
		{KindQueryCount, []string{"how many", "count", "number of", "total"}},
		{KindMutationCreate, []string{"create", "add a", "add an", "register", "new"}},
		{KindQueryList, []string{"show all", "list all", "list", "which", "give me all", "get all", "what are the"}},
		{KindQuerySingle, []string{"what is", "show me", "find", "get", "give me", "details about", "information about"}},
	},
}

var (
	idParamPattern = regexp.MustCompile(`(?i)\b(?:id|nummer|number)\b\s*[=:]?\s*['"]?(\w+)['"]?`)
	quotedPattern  = regexp.MustCompile(`["']([^"']+)["']`)
	trailingNumber = regexp.MustCompile(`\b(\d+)[\s?.!]*$`)
)

// RuleStrategy is the deterministic extraction strategy. It is always
// available and serves as the fallback when the model strategy fails.
type RuleStrategy struct {
	registry *ontology.Registry
}

// NewRuleStrategy returns a rule-based strategy over the given ontology.
func NewRuleStrategy(reg *ontology.Registry) *RuleStrategy {
	return &RuleStrategy{registry: reg}
}

// Extract tokenizes the text, matches trigger phrases to an intent kind,
// resolves the entity through the ontology synonym tables, and collects
// identifier-like tokens as candidate filter values.
//
// Confidence is 1.0 when both a trigger and an entity matched, 0.5 when only
// the entity matched (kind defaults to QUERY_LIST), 0.0 otherwise.
func (s *RuleStrategy) Extract(_ context.Context, text string, lang ontology.Language) (ExtractedIntent, error) {
	lower := strings.ToLower(strings.TrimSpace(text))

	kind := detectKind(lower, lang)

	entity := ""
	if e, err := s.registry.ResolveEntity(lower); err == nil {
		entity = e.Name
	}

	out := ExtractedIntent{
		Kind:       kind,
		Entity:     entity,
		Parameters: extractParameters(text, kind),
		Query:      text,
		Language:   lang,
	}

	switch {
	case kind != KindUnknown && entity != "":
		out.Confidence = 1.0
	case entity != "":
		out.Kind = KindQueryList
		out.Confidence = 0.5
	default:
		// No entity means nothing to plan against, even if a trigger matched.
		out.Confidence = 0.0
	}
	return out, nil
}

func detectKind(lower string, lang ontology.Language) Kind {
	for _, table := range triggersByLanguage[lang] {
		for _, phrase := range table.phrases {
			if strings.Contains(lower, phrase) {
				return table.kind
			}
		}
	}
	return KindUnknown
}

// extractParameters pulls quoted strings and identifier-like tokens out of
// the text: quoted values become a name filter, "id N" or a trailing number
// becomes an identifier filter.
func extractParameters(text string, kind Kind) map[string]string {
	params := make(map[string]string)

	if m := idParamPattern.FindStringSubmatch(text); m != nil {
		params["id"] = m[1]
	}
	if m := quotedPattern.FindStringSubmatch(text); m != nil {
		params["name"] = m[1]
	}
	if _, ok := params["id"]; !ok && kind == KindQuerySingle {
		if m := trailingNumber.FindStringSubmatch(text); m != nil {
			params["id"] = m[1]
		}
	}
	return params
}
