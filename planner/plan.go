// Package planner validates and normalizes an ExtractedIntent into a
// QueryPlan: resolved entity type, typed filters, resolved field projection,
// default limits. All user-input validation is front-loaded here so the
// downstream generators are pure serializers that cannot fail on user error.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/ontology"
)

// ValueKind discriminates the typed filter value union.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueID
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueID:
		return "id"
	default:
		return "unknown"
	}
}

// Value is a typed filter value. Exactly one representation is active,
// selected by Kind; ID values keep the raw string and additionally carry the
// numeric form when the raw text coerced to a number.
type Value struct {
	Kind ValueKind
	S    string
	N    float64

	// Numeric is set on ID values whose raw text parsed as a number.
	Numeric bool
}

// String renders the value for plan descriptions and logs.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.N, 'f', -1, 64)
	case ValueID:
		if v.Numeric {
			return strconv.FormatFloat(v.N, 'f', -1, 64)
		}
		return v.S
	default:
		return v.S
	}
}

// Op is a filter operator.
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains"
)

// Filter is one typed, validated condition on a field of the plan's entity
// (or of the anchor entity when part of an Anchor).
type Filter struct {
	Field string
	Op    Op
	Value Value
}

// Anchor scopes the query to entities reachable from a filtered anchor
// entity, e.g. "sensors in building X": the anchor is Building filtered by
// name, Path is the resolved relation sequence from Building to the target.
type Anchor struct {
	Entity ontology.EntityType
	Path   []ontology.Relation
	Filter Filter
}

// Include projects a related entity set alongside the main projection,
// resolved from a requested field name that named a relation instead of a
// scalar field. Nested projections are scalar-only, which bounds traversal
// depth to one hop chain per include.
type Include struct {
	Alias  string
	Entity ontology.EntityType
	Path   []ontology.Relation
	Fields []string
}

// QueryPlan is the validated, typed, entity-bound specification from which
// both query strings are deterministically generated. Immutable once built;
// the structured-query generator and the graph-query resolver read the same
// plan, so the two generated strings are always plan-consistent.
type QueryPlan struct {
	Op     intent.Kind
	Entity ontology.EntityType

	// Filters are ordered by parameter key, so equal intents produce equal
	// plans regardless of map iteration order.
	Filters []Filter

	Anchor *Anchor

	// Fields is the ordered, deduplicated projection. The identifier field is
	// always first.
	Fields []string

	// Includes are related entity sets projected alongside Fields.
	Includes []Include

	// Limit bounds result size; set only for QUERY_LIST.
	Limit int
}

// Describe renders a human-readable plan summary for debugging output.
func (p *QueryPlan) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", p.Op, p.Entity.Name)
	if p.Anchor != nil {
		hops := make([]string, len(p.Anchor.Path))
		for i, rel := range p.Anchor.Path {
			hops[i] = rel.Name
		}
		fmt.Fprintf(&b, "\n  anchor: %s where %s %s %s via %s",
			p.Anchor.Entity.Name, p.Anchor.Filter.Field, p.Anchor.Filter.Op,
			p.Anchor.Filter.Value, strings.Join(hops, " -> "))
	}
	for _, f := range p.Filters {
		fmt.Fprintf(&b, "\n  filter: %s %s %s", f.Field, f.Op, f.Value)
	}
	fmt.Fprintf(&b, "\n  fields: %s", strings.Join(p.Fields, ", "))
	for _, inc := range p.Includes {
		fmt.Fprintf(&b, "\n  include: %s (%s: %s)", inc.Alias, inc.Entity.Name, strings.Join(inc.Fields, ", "))
	}
	if p.Limit > 0 {
		fmt.Fprintf(&b, "\n  limit: %d", p.Limit)
	}
	return b.String()
}
