// Package gql renders a QueryPlan into a GraphQL-style query string.
//
// The generator is a pure serializer: all validation happened in the planner,
// so the same plan always yields the byte-identical document. The emitted
// document is parsed back through gqlparser as an internal invariant check;
// a parse failure is a programmer error, never a user error.
package gql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/planner"
)

// Generator serializes query plans to GraphQL documents.
type Generator struct{}

// New returns a generator.
func New() *Generator {
	return &Generator{}
}

// Generate renders the plan. Operation names derive from the entity's
// GraphQL names and the operation kind: listTemperatureSensors,
// temperatureSensor, temperatureSensorCount, createTemperatureSensor.
func (g *Generator) Generate(plan *planner.QueryPlan) (string, error) {
	var b strings.Builder

	keyword := "query"
	if plan.Op == intent.KindMutationCreate {
		keyword = "mutation"
	}

	b.WriteString(keyword)
	b.WriteString(" {\n")
	b.WriteString("  ")
	b.WriteString(operationName(plan))

	if args := renderArguments(plan); args != "" {
		b.WriteString("(")
		b.WriteString(args)
		b.WriteString(")")
	}

	if plan.Op == intent.KindQueryCount {
		// Count operations are scalar fields with no selection set.
		b.WriteString("\n}\n")
	} else {
		b.WriteString(" {\n")
		for _, f := range plan.Fields {
			b.WriteString("    ")
			b.WriteString(f)
			b.WriteString("\n")
		}
		for _, inc := range plan.Includes {
			b.WriteString("    ")
			b.WriteString(inc.Alias)
			b.WriteString(" {\n")
			for _, f := range inc.Fields {
				b.WriteString("      ")
				b.WriteString(f)
				b.WriteString("\n")
			}
			b.WriteString("    }\n")
		}
		b.WriteString("  }\n}\n")
	}

	doc := b.String()
	if _, err := parser.ParseQuery(&ast.Source{Name: "generated", Input: doc}); err != nil {
		return "", errors.WrapFatal(err, "Generator", "Generate", "invariant check")
	}
	return doc, nil
}

func operationName(plan *planner.QueryPlan) string {
	switch plan.Op {
	case intent.KindQueryList:
		return "list" + upperFirst(plan.Entity.Plural)
	case intent.KindQueryCount:
		return plan.Entity.GraphQL + "Count"
	case intent.KindMutationCreate:
		return "create" + upperFirst(plan.Entity.GraphQL)
	default:
		return plan.Entity.GraphQL
	}
}

// renderArguments emits anchor, filters and limit in plan order.
func renderArguments(plan *planner.QueryPlan) string {
	var args []string

	if a := plan.Anchor; a != nil {
		name := strings.ToLower(a.Entity.Name) + "_" + a.Filter.Field
		args = append(args, argument(name, a.Filter))
	}
	for _, f := range plan.Filters {
		args = append(args, argument(f.Field, f))
	}
	if plan.Limit > 0 {
		args = append(args, fmt.Sprintf("limit: %d", plan.Limit))
	}
	return strings.Join(args, ", ")
}

func argument(name string, f planner.Filter) string {
	if f.Op == planner.OpContains {
		name += "_contains"
	}
	return fmt.Sprintf("%s: %s", name, literal(f.Value))
}

func literal(v planner.Value) string {
	switch v.Kind {
	case planner.ValueNumber:
		return strconv.FormatFloat(v.N, 'f', -1, 64)
	case planner.ValueID:
		if v.Numeric {
			return strconv.FormatFloat(v.N, 'f', -1, 64)
		}
		return strconv.Quote(v.S)
	default:
		return strconv.Quote(v.S)
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
