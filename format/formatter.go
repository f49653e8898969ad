// Package format renders executed result rows into a natural-language
// answer, in Norwegian or English.
//
// Rendering is deterministic template filling by operation kind and row
// count. The formatter's core invariant: no field is ever shown that was not
// part of the QueryPlan's projection, so the visible answer matches exactly
// what was asked for even when the graph service over-fetches.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/semquery/graph"
	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/ontology"
	"github.com/c360/semquery/planner"
)

// Formatter renders answers. Stateless and safe for concurrent use.
type Formatter struct{}

// New returns a formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format renders rows for the given plan and language.
func (f *Formatter) Format(plan *planner.QueryPlan, rows []graph.Row, lang ontology.Language) string {
	switch plan.Op {
	case intent.KindQueryCount:
		return formatCount(plan, rows, lang)
	case intent.KindMutationCreate:
		return formatCreate(plan, rows, lang)
	case intent.KindQuerySingle:
		if len(rows) == 0 {
			return notFound(plan, lang)
		}
		return fieldListing(plan, rows[0])
	default:
		return formatList(plan, rows, lang)
	}
}

func notFound(plan *planner.QueryPlan, lang ontology.Language) string {
	noun := plan.Entity.DisplayName(lang)
	if lang == ontology.LanguageNorwegian {
		return fmt.Sprintf("Ingen %s funnet.", noun)
	}
	return fmt.Sprintf("No %s found.", noun)
}

func formatList(plan *planner.QueryPlan, rows []graph.Row, lang ontology.Language) string {
	if len(rows) == 0 {
		return notFound(plan, lang)
	}

	noun := plan.Entity.DisplayName(lang)
	var b strings.Builder
	if lang == ontology.LanguageNorwegian {
		fmt.Fprintf(&b, "Fant %d %s:", len(rows), noun)
	} else {
		fmt.Fprintf(&b, "Found %d %s:", len(rows), noun)
	}
	for _, row := range rows {
		b.WriteString("\n- ")
		b.WriteString(summaryLine(plan, row))
	}
	return b.String()
}

func formatCount(plan *planner.QueryPlan, rows []graph.Row, lang ontology.Language) string {
	n := 0
	if len(rows) > 0 {
		n = asInt(rows[0]["count"])
	}
	noun := plan.Entity.DisplayName(lang)
	if lang == ontology.LanguageNorwegian {
		return fmt.Sprintf("Det finnes %d %s.", n, noun)
	}
	return fmt.Sprintf("There are %d %s.", n, noun)
}

func formatCreate(plan *planner.QueryPlan, rows []graph.Row, lang ontology.Language) string {
	header := fmt.Sprintf("Created %s:", plan.Entity.Name)
	if lang == ontology.LanguageNorwegian {
		header = fmt.Sprintf("Opprettet %s:", plan.Entity.Name)
	}
	if len(rows) == 0 {
		return strings.TrimSuffix(header, ":") + "."
	}
	return header + "\n" + fieldListing(plan, rows[0])
}

// fieldListing renders one row as "field: value" lines in projection order.
// Missing optional properties are skipped, not rendered as errors.
func fieldListing(plan *planner.QueryPlan, row graph.Row) string {
	var lines []string
	for _, field := range plan.Fields {
		v, ok := row[field]
		if !ok || v == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", field, scalar(v)))
	}
	for _, inc := range plan.Includes {
		nested := row.Nested(inc.Alias)
		if len(nested) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", inc.Alias, nestedSummary(inc, nested)))
	}
	return strings.Join(lines, "\n")
}

// summaryLine renders one row as a single line: the name when projected,
// followed by the remaining projected fields in parentheses.
func summaryLine(plan *planner.QueryPlan, row graph.Row) string {
	var head string
	var parts []string
	for _, field := range plan.Fields {
		v, ok := row[field]
		if !ok || v == nil {
			continue
		}
		if field == "name" && head == "" {
			head = scalar(v)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, scalar(v)))
	}
	for _, inc := range plan.Includes {
		if nested := row.Nested(inc.Alias); len(nested) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", inc.Alias, nestedSummary(inc, nested)))
		}
	}

	detail := strings.Join(parts, ", ")
	switch {
	case head == "":
		return detail
	case detail == "":
		return head
	default:
		return fmt.Sprintf("%s (%s)", head, detail)
	}
}

// nestedSummary renders included rows by their first projected field.
func nestedSummary(inc planner.Include, rows []graph.Row) string {
	if len(inc.Fields) == 0 {
		return ""
	}
	key := inc.Fields[0]
	if len(inc.Fields) > 1 {
		key = inc.Fields[1]
	}
	vals := make([]string, 0, len(rows))
	for _, r := range rows {
		if v, ok := r[key]; ok && v != nil {
			vals = append(vals, scalar(v))
		}
	}
	return strings.Join(vals, ", ")
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return 0
}
