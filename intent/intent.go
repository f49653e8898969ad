// Package intent turns free-text questions into a structured ExtractedIntent.
//
// Two interchangeable strategies implement extraction behind one interface: a
// deterministic rule-based matcher that is always available, and an optional
// model-assisted strategy whose output is fully revalidated against the
// ontology before being trusted. The Extractor combines them with a
// fall-back-on-failure policy so a model outage never prevents an answer.
package intent

import (
	"context"
	"strings"

	"github.com/c360/semquery/ontology"
)

// Kind is the intent grammar: list, get one, count, create.
type Kind string

const (
	KindUnknown        Kind = "UNKNOWN"
	KindQueryList      Kind = "QUERY_LIST"
	KindQuerySingle    Kind = "QUERY_SINGLE"
	KindQueryCount     Kind = "QUERY_COUNT"
	KindMutationCreate Kind = "MUTATION_CREATE"
)

// ParseKind parses a kind token, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindQueryList:
		return KindQueryList, true
	case KindQuerySingle:
		return KindQuerySingle, true
	case KindQueryCount:
		return KindQueryCount, true
	case KindMutationCreate:
		return KindMutationCreate, true
	default:
		return KindUnknown, false
	}
}

// ExtractedIntent is the structured interpretation of one request. Created
// once per request and never mutated afterwards.
type ExtractedIntent struct {
	Kind Kind

	// Entity is the canonical entity type name, empty when unresolved.
	Entity string

	// Parameters holds raw candidate filter values keyed by field name.
	Parameters map[string]string

	// Fields lists requested field names; empty means "use defaults".
	Fields []string

	// Confidence is in [0,1]. Zero means extraction failed entirely and the
	// pipeline must reject the request before planning.
	Confidence float64

	// Query is the original input text.
	Query string

	Language ontology.Language
}

// Strategy extracts an intent from free text. Implementations must be safe
// for concurrent use.
type Strategy interface {
	Extract(ctx context.Context, text string, lang ontology.Language) (ExtractedIntent, error)
}
