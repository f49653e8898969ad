package ontology

import (
	"fmt"
	"strings"

	"github.com/c360/semquery/errors"
)

// Registry is the read-only domain model shared by every pipeline stage.
// Build it once with NewRegistry (or BuildingOntology for the shipped
// domain); it is never mutated afterwards and is safe for concurrent use.
type Registry struct {
	entities []EntityType
	byName   map[string]int

	relations []Relation
	chains    []HopChain
}

// NewRegistry builds a registry from entity, relation and hop-chain
// definitions, validating all cross-references. Declaration order is
// preserved and used as the final deterministic tie-break in resolution.
func NewRegistry(entities []EntityType, relations []Relation, chains []HopChain) (*Registry, error) {
	if len(entities) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("no entities defined"), "Registry", "NewRegistry", "validation")
	}

	r := &Registry{
		entities:  entities,
		byName:    make(map[string]int, len(entities)),
		relations: relations,
		chains:    chains,
	}

	for i, e := range entities {
		if err := validateEntity(e); err != nil {
			return nil, errors.WrapInvalid(err, "Registry", "NewRegistry", "entity validation")
		}
		if _, dup := r.byName[e.Name]; dup {
			return nil, errors.WrapInvalid(fmt.Errorf("duplicate entity %s", e.Name),
				"Registry", "NewRegistry", "entity validation")
		}
		r.byName[e.Name] = i
	}

	aliasSeen := make(map[string]bool, len(relations))
	for _, rel := range relations {
		if _, ok := r.byName[rel.Source]; !ok {
			return nil, errors.WrapInvalid(fmt.Errorf("relation %s: unknown source %s", rel.Name, rel.Source),
				"Registry", "NewRegistry", "relation validation")
		}
		if _, ok := r.byName[rel.Target]; !ok {
			return nil, errors.WrapInvalid(fmt.Errorf("relation %s: unknown target %s", rel.Name, rel.Target),
				"Registry", "NewRegistry", "relation validation")
		}
		if rel.Alias == "" || rel.EdgeType == "" {
			return nil, errors.WrapInvalid(fmt.Errorf("relation %s: alias and edge type are required", rel.Name),
				"Registry", "NewRegistry", "relation validation")
		}
		key := rel.Source + "/" + rel.Alias
		if aliasSeen[key] {
			return nil, errors.WrapInvalid(fmt.Errorf("relation alias %s duplicated on %s", rel.Alias, rel.Source),
				"Registry", "NewRegistry", "relation validation")
		}
		aliasSeen[key] = true
	}

	// Hop chains must expand hop by hop and land on the declared target.
	for _, c := range chains {
		path, err := r.expandChain(c)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Registry", "NewRegistry", "hop-chain validation")
		}
		if last := path[len(path)-1]; last.Target != c.Target {
			return nil, errors.WrapInvalid(
				fmt.Errorf("hop chain %s ends at %s, declared target %s", c.Alias, last.Target, c.Target),
				"Registry", "NewRegistry", "hop-chain validation")
		}
	}

	return r, nil
}

// Entity returns the entity type with the given canonical name.
func (r *Registry) Entity(name string) (EntityType, bool) {
	i, ok := r.byName[name]
	if !ok {
		return EntityType{}, false
	}
	return r.entities[i], true
}

// Entities returns all entity types in declaration order.
func (r *Registry) Entities() []EntityType {
	return r.entities
}

// FieldsOf returns the exposed field list of an entity type.
func (r *Registry) FieldsOf(e EntityType) []Field {
	return e.Fields
}

// ResolveEntity resolves a natural-language token to an entity type.
//
// Matching is case-insensitive and whitespace-normalized: first exact match
// against the synonym set (plus the canonical name), then substring match in
// either direction. Ties are broken by preferring the entity whose canonical
// name shares the longest common prefix with the token, then by declaration
// order, so resolution is stable and deterministic.
func (r *Registry) ResolveEntity(token string) (EntityType, error) {
	norm := normalizeToken(token)
	if norm == "" {
		return EntityType{}, errors.NewStageError(errors.StageExtract, errors.ErrUnknownEntity, token, "")
	}

	if e, ok := r.matchEntities(norm, matchExact); ok {
		return e, nil
	}
	if e, ok := r.matchEntities(norm, matchSubstring); ok {
		return e, nil
	}

	return EntityType{}, errors.NewStageError(errors.StageExtract, errors.ErrUnknownEntity, token, "")
}

type matchMode int

const (
	matchExact matchMode = iota
	matchSubstring
)

// matchEntities runs one matching pass over all entities and applies the
// tie-break rules.
func (r *Registry) matchEntities(norm string, mode matchMode) (EntityType, bool) {
	bestIdx := -1
	bestPrefix := -1

	for i, e := range r.entities {
		if !entityMatches(e, norm, mode) {
			continue
		}
		prefix := commonPrefixLen(e.Name, norm)
		if prefix > bestPrefix {
			bestIdx = i
			bestPrefix = prefix
		}
	}

	if bestIdx < 0 {
		return EntityType{}, false
	}
	return r.entities[bestIdx], true
}

func entityMatches(e EntityType, norm string, mode matchMode) bool {
	candidates := []string{normalizeToken(e.Name), normalizeToken(strings.ReplaceAll(e.Name, "_", " "))}
	for _, syns := range e.Synonyms {
		for _, s := range syns {
			candidates = append(candidates, normalizeToken(s))
		}
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		switch mode {
		case matchExact:
			if c == norm {
				return true
			}
		case matchSubstring:
			if strings.Contains(norm, c) || strings.Contains(c, norm) {
				return true
			}
		}
	}
	return false
}

// ResolveRelationPath resolves a path of relations from a source entity to a
// target entity or alias.
//
// Direct relations are considered before hop-chain aliases, and among
// matching chains the shortest wins; chains of equal length resolve by
// declaration order. The result is the ordered relation sequence to render,
// one pattern edge per hop.
func (r *Registry) ResolveRelationPath(source EntityType, targetOrAlias string) ([]Relation, error) {
	norm := normalizeToken(targetOrAlias)

	// Direct relations first: shortest chain always wins.
	for _, rel := range r.relations {
		if rel.Source != source.Name {
			continue
		}
		if relationMatches(rel, norm) {
			return []Relation{rel}, nil
		}
	}

	var best []Relation
	for _, c := range r.chains {
		if c.Source != source.Name {
			continue
		}
		if normalizeToken(c.Alias) != norm && normalizeToken(c.Target) != norm &&
			normalizeToken(strings.ReplaceAll(c.Target, "_", " ")) != norm {
			continue
		}
		path, err := r.expandChain(c)
		if err != nil {
			return nil, errors.WrapFatal(err, "Registry", "ResolveRelationPath", "hop-chain expansion")
		}
		// Strictly shorter replaces; equal length keeps the earlier declaration.
		if best == nil || len(path) < len(best) {
			best = path
		}
	}
	if best != nil {
		return best, nil
	}

	return nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownEntity, targetOrAlias, "")
}

func relationMatches(rel Relation, norm string) bool {
	return normalizeToken(rel.Alias) == norm ||
		normalizeToken(rel.Target) == norm ||
		normalizeToken(strings.ReplaceAll(rel.Target, "_", " ")) == norm
}

// RelationFrom returns the relation with the given alias on the source
// entity, used to resolve projected relation fields.
func (r *Registry) RelationFrom(source EntityType, alias string) (Relation, bool) {
	for _, rel := range r.relations {
		if rel.Source == source.Name && rel.Alias == alias {
			return rel, true
		}
	}
	return Relation{}, false
}

// expandChain resolves a hop chain's relation aliases stepwise from its
// source entity.
func (r *Registry) expandChain(c HopChain) ([]Relation, error) {
	if len(c.Hops) == 0 {
		return nil, fmt.Errorf("hop chain %s: no hops", c.Alias)
	}

	current, ok := r.Entity(c.Source)
	if !ok {
		return nil, fmt.Errorf("hop chain %s: unknown source %s", c.Alias, c.Source)
	}

	path := make([]Relation, 0, len(c.Hops))
	for _, hop := range c.Hops {
		rel, ok := r.RelationFrom(current, hop)
		if !ok {
			return nil, fmt.Errorf("hop chain %s: no relation %s on %s", c.Alias, hop, current.Name)
		}
		path = append(path, rel)
		current, ok = r.Entity(rel.Target)
		if !ok {
			return nil, fmt.Errorf("hop chain %s: unknown entity %s", c.Alias, rel.Target)
		}
	}
	return path, nil
}

// LLMContext exports an ontology summary used as context for the
// model-assisted intent extractor. The output is deterministic so prompts
// are cacheable.
func (r *Registry) LLMContext() string {
	var b strings.Builder

	b.WriteString("ENTITY TYPES:\n")
	for _, e := range r.entities {
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = f.Name
		}
		b.WriteString(fmt.Sprintf("  - %s (label %s)\n", e.Name, e.Label))
		b.WriteString(fmt.Sprintf("    fields: %s\n", strings.Join(fields, ", ")))
		for _, lang := range []Language{LanguageNorwegian, LanguageEnglish} {
			if syns := e.Synonyms[lang]; len(syns) > 0 {
				b.WriteString(fmt.Sprintf("    synonyms (%s): %s\n", lang, strings.Join(syns, ", ")))
			}
		}
	}

	b.WriteString("\nRELATIONS:\n")
	for _, rel := range r.relations {
		b.WriteString(fmt.Sprintf("  - %s -[%s]-> %s (as %q)\n", rel.Source, rel.Name, rel.Target, rel.Alias))
	}

	if len(r.chains) > 0 {
		b.WriteString("\nTRAVERSAL SHORTCUTS:\n")
		for _, c := range r.chains {
			b.WriteString(fmt.Sprintf("  - %s of %s: %s (%d hops)\n",
				c.Alias, c.Source, strings.Join(c.Hops, " -> "), len(c.Hops)))
		}
	}

	return b.String()
}
