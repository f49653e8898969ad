// Package graph executes generated graph queries against the query service
// and carries the result rows back through the pipeline.
package graph

// Row maps projected field names to scalar values, plus nested row slices for
// included relations. Missing optional properties are absent keys, never
// errors.
type Row map[string]any

// Nested returns the nested rows stored under an include alias, tolerating
// both []Row and the []any shape produced by JSON decoding.
func (r Row) Nested(alias string) []Row {
	switch v := r[alias].(type) {
	case []Row:
		return v
	case []any:
		out := make([]Row, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Row(m))
			}
		}
		return out
	default:
		return nil
	}
}
