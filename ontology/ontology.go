// Package ontology defines the static domain model for the building-energy
// knowledge graph: entity types with their fields and synonym vocabulary,
// typed relations between entity types, and named hop-chain aliases for
// multi-step traversals.
//
// The registry is built once at startup and never mutated afterwards, which
// makes it safe for unsynchronized concurrent reads from every pipeline
// stage. All disambiguation that would otherwise happen at query time
// (synonym matching, relation path selection) is declared here once, so the
// downstream generators stay deterministic.
package ontology

import (
	"fmt"
	"strings"
)

// Language identifies a supported natural language.
type Language string

const (
	// LanguageNorwegian is Bokmål Norwegian ("no").
	LanguageNorwegian Language = "no"
	// LanguageEnglish is English ("en").
	LanguageEnglish Language = "en"
)

// FieldType is the semantic type of an entity field. It drives filter value
// coercion in the planner and literal rendering in both generators.
type FieldType int

const (
	// FieldString is free text; filters on string fields use substring matching.
	FieldString FieldType = iota
	// FieldNumber is a numeric value; filter values must coerce to a number.
	FieldNumber
	// FieldID is an identifier; numeric-looking values are coerced to numbers,
	// other values are matched as exact strings.
	FieldID
	// FieldEnum is a closed string value; filters use exact equality.
	FieldEnum
)

// String returns the string representation of the field type
func (ft FieldType) String() string {
	switch ft {
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldID:
		return "id"
	case FieldEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Field describes one exposed field of an entity type.
type Field struct {
	Name string
	Type FieldType

	// Primary marks fields eligible for the default projection (identifier
	// and name are always projected; up to two primary fields follow).
	Primary bool
}

// EntityType describes a named class of domain object. Immutable once the
// registry is constructed.
type EntityType struct {
	// Name is the canonical identifier, e.g. "Temperature_Sensor".
	Name string

	// Label is the graph-database node label, e.g. "brick_Temperature_Sensor".
	Label string

	// GraphQL is the lowerCamel singular operation base, e.g. "temperatureSensor".
	GraphQL string

	// Plural is the lowerCamel plural operation base, e.g. "temperatureSensors".
	Plural string

	// Display holds the human-readable plural noun per language, used by the
	// response formatter ("temperatursensorer", "temperature sensors").
	Display map[Language]string

	// Fields lists the exposed fields. Fields[0] is the identifier field.
	Fields []Field

	// Synonyms holds the natural-language vocabulary per language used for
	// entity resolution.
	Synonyms map[Language][]string
}

// Identifier returns the entity's identifier field.
func (e EntityType) Identifier() Field {
	return e.Fields[0]
}

// FieldByName looks up a field by name.
func (e EntityType) FieldByName(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// DisplayName returns the display noun for the given language, falling back
// to English, then to the canonical name.
func (e EntityType) DisplayName(lang Language) string {
	if d, ok := e.Display[lang]; ok {
		return d
	}
	if d, ok := e.Display[LanguageEnglish]; ok {
		return d
	}
	return e.Name
}

// Relation is a named, typed edge between two entity types.
type Relation struct {
	// Source and Target are canonical entity type names.
	Source string
	Target string

	// Name is the relation name, e.g. "hasPart", "feeds", "hasPoint".
	Name string

	// Alias is the projection name for the related set as seen from the
	// source, e.g. "floors", "sensors". Unique per source entity.
	Alias string

	// EdgeType is the graph-database relationship-type token, e.g. "brick_hasPart".
	EdgeType string

	// Many is true for one-to-many relations.
	Many bool
}

// HopChain is a fixed sequence of relations representing a named traversal
// shortcut, e.g. Building→Floor→Zone addressed as "zones of building".
// Hops are relation aliases resolved stepwise from Source.
type HopChain struct {
	Alias  string
	Source string
	Target string
	Hops   []string
}

// normalizeToken lowercases a token and collapses internal whitespace.
func normalizeToken(token string) string {
	return strings.Join(strings.Fields(strings.ToLower(token)), " ")
}

// commonPrefixLen returns the length of the longest common prefix of two
// strings, compared case-insensitively.
func commonPrefixLen(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// validateEntity checks structural invariants of an entity definition.
func validateEntity(e EntityType) error {
	if e.Name == "" {
		return fmt.Errorf("entity with empty name")
	}
	if e.Label == "" {
		return fmt.Errorf("entity %s: empty graph label", e.Name)
	}
	if e.GraphQL == "" || e.Plural == "" {
		return fmt.Errorf("entity %s: missing GraphQL names", e.Name)
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("entity %s: no fields", e.Name)
	}
	if e.Fields[0].Type != FieldID {
		return fmt.Errorf("entity %s: first field %s must be the identifier", e.Name, e.Fields[0].Name)
	}
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" {
			return fmt.Errorf("entity %s: field with empty name", e.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("entity %s: duplicate field %s", e.Name, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}
