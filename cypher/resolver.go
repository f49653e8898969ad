// Package cypher renders a QueryPlan into a graph pattern-matching query.
//
// Like the GraphQL generator it is a pure serializer over an already
// validated plan: entity labels and relationship tokens come from the
// ontology, literal values are always escaped and quoted, and the same plan
// yields the byte-identical query string.
package cypher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/ontology"
	"github.com/c360/semquery/planner"
)

// maxIncludeHops bounds nested include traversal. Plans resolved through the
// ontology never exceed it; hitting the bound is a programmer error.
const maxIncludeHops = 3

// Resolver renders query plans as graph queries.
type Resolver struct {
	registry *ontology.Registry
}

// New returns a resolver over the given ontology. The registry supplies node
// labels for intermediate hop variables.
func New(reg *ontology.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Resolve renders the plan. The target entity is always bound to variable n;
// anchor hops bind a (anchor) and h1, h2, ... (intermediates); include hops
// bind i<idx>_<hop> inside OPTIONAL MATCH blocks.
func (r *Resolver) Resolve(plan *planner.QueryPlan) (string, error) {
	if plan.Op == intent.KindMutationCreate {
		return r.renderCreate(plan), nil
	}

	var b strings.Builder

	match, err := r.renderMatch(plan)
	if err != nil {
		return "", err
	}
	b.WriteString(match)

	if where := renderWhere(plan); where != "" {
		b.WriteString("\nWHERE ")
		b.WriteString(where)
	}

	if plan.Op == intent.KindQueryCount {
		// Counting drops the projection entirely, includes too: a dangling
		// OPTIONAL MATCH would multiply rows and inflate count(n).
		b.WriteString("\nRETURN count(n) AS count")
		return b.String(), nil
	}

	returns := []string{}
	for idx, inc := range plan.Includes {
		block, collected, err := r.renderInclude(idx+1, inc)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(block)
		returns = append(returns, collected)
	}

	b.WriteString("\nRETURN ")
	b.WriteString(projection("n", plan.Fields))
	b.WriteString(" AS row")
	for _, ret := range returns {
		b.WriteString(", ")
		b.WriteString(ret)
	}

	switch {
	case plan.Op == intent.KindQuerySingle:
		// At most one row by contract, even when a CONTAINS filter matches
		// several nodes.
		b.WriteString("\nLIMIT 1")
	case plan.Limit > 0:
		fmt.Fprintf(&b, "\nLIMIT %d", plan.Limit)
	}
	return b.String(), nil
}

// renderMatch builds the MATCH clause: either a single labelled node or the
// anchor pattern with one directed edge per resolved hop.
func (r *Resolver) renderMatch(plan *planner.QueryPlan) (string, error) {
	if plan.Anchor == nil {
		return fmt.Sprintf("MATCH (n:%s)", plan.Entity.Label), nil
	}

	a := plan.Anchor
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (a:%s)", a.Entity.Label)

	for i, rel := range a.Path {
		variable := fmt.Sprintf("h%d", i+1)
		label, err := r.labelOf(rel.Target)
		if err != nil {
			return "", err
		}
		if i == len(a.Path)-1 {
			variable = "n"
			label = plan.Entity.Label
		}
		fmt.Fprintf(&b, "-[:%s]->(%s:%s)", rel.EdgeType, variable, label)
	}
	return b.String(), nil
}

func (r *Resolver) renderInclude(idx int, inc planner.Include) (block string, collected string, err error) {
	if len(inc.Path) == 0 || len(inc.Path) > maxIncludeHops {
		return "", "", errors.WrapFatal(
			fmt.Errorf("include %s: path length %d out of bounds", inc.Alias, len(inc.Path)),
			"Resolver", "Resolve", "include rendering")
	}

	var b strings.Builder
	b.WriteString("OPTIONAL MATCH (n)")
	last := ""
	for i, rel := range inc.Path {
		last = fmt.Sprintf("i%d_%d", idx, i+1)
		label, err := r.labelOf(rel.Target)
		if err != nil {
			return "", "", err
		}
		fmt.Fprintf(&b, "-[:%s]->(%s:%s)", rel.EdgeType, last, label)
	}

	collected = fmt.Sprintf("collect(DISTINCT %s) AS %s", projection(last, inc.Fields), inc.Alias)
	return b.String(), collected, nil
}

func (r *Resolver) renderCreate(plan *planner.QueryPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE (n:%s", plan.Entity.Label)
	if len(plan.Filters) > 0 {
		props := make([]string, len(plan.Filters))
		for i, f := range plan.Filters {
			props[i] = fmt.Sprintf("%s: %s", f.Field, literal(f.Value))
		}
		fmt.Fprintf(&b, " {%s}", strings.Join(props, ", "))
	}
	b.WriteString(")\nRETURN ")
	b.WriteString(projection("n", plan.Fields))
	b.WriteString(" AS row")
	return b.String()
}

func (r *Resolver) labelOf(entityName string) (string, error) {
	e, ok := r.registry.Entity(entityName)
	if !ok {
		return "", errors.WrapFatal(fmt.Errorf("unknown entity %s in relation path", entityName),
			"Resolver", "Resolve", "label lookup")
	}
	return e.Label, nil
}

// renderWhere joins the anchor condition and the target filters with AND, in
// plan order.
func renderWhere(plan *planner.QueryPlan) string {
	var conds []string
	if a := plan.Anchor; a != nil {
		conds = append(conds, condition("a", a.Filter))
	}
	for _, f := range plan.Filters {
		conds = append(conds, condition("n", f))
	}
	return strings.Join(conds, " AND ")
}

func condition(variable string, f planner.Filter) string {
	op := "="
	if f.Op == planner.OpContains {
		op = "CONTAINS"
	}
	return fmt.Sprintf("%s.%s %s %s", variable, f.Field, op, literal(f.Value))
}

func projection(variable string, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = "." + f
	}
	return fmt.Sprintf("%s {%s}", variable, strings.Join(parts, ", "))
}

// literal renders a typed value as an escaped query literal. User text never
// reaches the query string unescaped.
func literal(v planner.Value) string {
	switch v.Kind {
	case planner.ValueNumber:
		return strconv.FormatFloat(v.N, 'f', -1, 64)
	case planner.ValueID:
		if v.Numeric {
			return strconv.FormatFloat(v.N, 'f', -1, 64)
		}
		return quote(v.S)
	default:
		return quote(v.S)
	}
}

// quote single-quotes a string literal: backslashes and quotes are
// backslash-escaped, control characters are stripped.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\'':
			b.WriteString(`\'`)
		case r < 0x20 || r == 0x7f:
			// stripped
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
