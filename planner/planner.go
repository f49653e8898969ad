package planner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/ontology"
)

// DefaultLimit bounds QUERY_LIST traversal cost when no explicit limit is
// configured.
const DefaultLimit = 20

// MaxDefaultPrimaryFields caps how many Primary fields join the default
// projection, keeping generated queries small and answers readable.
const MaxDefaultPrimaryFields = 2

// Planner turns extracted intents into validated query plans.
type Planner struct {
	registry *ontology.Registry
	limit    int
}

// New creates a planner over the given ontology. limit <= 0 selects
// DefaultLimit.
func New(reg *ontology.Registry, limit int) *Planner {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Planner{registry: reg, limit: limit}
}

// Plan validates an extracted intent and builds the query plan.
//
// Fails with AmbiguousIntentError when extraction produced no usable signal,
// UnknownEntityError when the entity is unresolved, UnknownFieldError for a
// projection or parameter naming no known field, and InvalidParameterError
// when a value cannot be coerced to its field's semantic type. Planning
// errors never reach the graph service.
func (p *Planner) Plan(in intent.ExtractedIntent) (*QueryPlan, error) {
	if in.Confidence == 0 {
		return nil, errors.NewStageError(errors.StagePlan, errors.ErrAmbiguousIntent, "", "")
	}
	if in.Entity == "" {
		return nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownEntity, in.Entity, "")
	}
	entity, ok := p.registry.Entity(in.Entity)
	if !ok {
		return nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownEntity, in.Entity, "")
	}

	kind := in.Kind
	if kind == intent.KindUnknown || kind == "" {
		kind = intent.KindQueryList
	}

	fields, includes, err := p.resolveProjection(entity, in.Fields)
	if err != nil {
		return nil, err
	}

	plan := &QueryPlan{
		Op:       kind,
		Entity:   entity,
		Fields:   fields,
		Includes: includes,
	}

	if err := p.resolveParameters(plan, in.Parameters); err != nil {
		return nil, err
	}

	if kind == intent.KindQueryList {
		plan.Limit = p.limit
	}
	return plan, nil
}

// resolveProjection validates requested fields or builds the default
// projection: identifier, name when present, then up to two Primary fields.
// A requested name that is not a scalar field but resolves to a relation of
// the entity becomes an Include with the related entity's default scalar
// projection; nesting stops there.
func (p *Planner) resolveProjection(entity ontology.EntityType, requested []string) ([]string, []Include, error) {
	if len(requested) == 0 {
		return defaultFields(entity), nil, nil
	}

	id := entity.Identifier().Name
	fields := []string{id}
	seen := map[string]bool{id: true}
	var includes []Include

	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true

		if _, ok := entity.FieldByName(name); ok {
			fields = append(fields, name)
			continue
		}
		path, err := p.registry.ResolveRelationPath(entity, name)
		if err != nil {
			return nil, nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownField, entity.Name, name)
		}
		related, ok := p.registry.Entity(path[len(path)-1].Target)
		if !ok {
			return nil, nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownField, entity.Name, name)
		}
		includes = append(includes, Include{
			Alias:  name,
			Entity: related,
			Path:   path,
			Fields: defaultFields(related),
		})
	}
	return fields, includes, nil
}

func defaultFields(entity ontology.EntityType) []string {
	id := entity.Identifier().Name
	fields := []string{id}
	if _, ok := entity.FieldByName("name"); ok {
		fields = append(fields, "name")
	}
	primaries := 0
	for _, f := range entity.Fields {
		if !f.Primary || primaries == MaxDefaultPrimaryFields {
			continue
		}
		if f.Name == id || f.Name == "name" {
			continue
		}
		fields = append(fields, f.Name)
		primaries++
	}
	return fields
}

// resolveParameters turns the raw parameter map into typed filters, in key
// order. A key naming a field of the plan's entity becomes a direct filter;
// a key resolving to a different entity type becomes the relation-scoped
// anchor; anything else is an unknown field.
func (p *Planner) resolveParameters(plan *QueryPlan, params map[string]string) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := params[key]

		if field, ok := plan.Entity.FieldByName(key); ok {
			f, err := buildFilter(plan.Entity.Name, field, raw, plan.Op)
			if err != nil {
				return err
			}
			plan.Filters = append(plan.Filters, f)
			continue
		}

		anchor, err := p.resolveAnchor(plan.Entity, key, raw)
		if err != nil {
			return err
		}
		if plan.Anchor != nil {
			return errors.WrapInvalid(
				fmt.Errorf("multiple anchor parameters: %w", errors.ErrInvalidParameter),
				"Planner", "Plan", "parameter resolution")
		}
		if plan.Op == intent.KindMutationCreate {
			return errors.NewStageError(errors.StagePlan, errors.ErrInvalidParameter, plan.Entity.Name, key)
		}
		plan.Anchor = anchor
	}
	return nil
}

// resolveAnchor interprets a non-field parameter key as a reference to
// another entity type, e.g. "building_name" on a sensor query anchors the
// traversal at a named Building.
func (p *Planner) resolveAnchor(target ontology.EntityType, key, raw string) (*Anchor, error) {
	token := strings.TrimSuffix(strings.TrimSuffix(key, "_name"), "_id")

	anchorEntity, err := p.registry.ResolveEntity(token)
	if err != nil {
		return nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownField, target.Name, key)
	}
	if anchorEntity.Name == target.Name {
		return nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownField, target.Name, key)
	}

	path, err := p.registry.ResolveRelationPath(anchorEntity, target.Name)
	if err != nil {
		return nil, errors.NewStageError(errors.StagePlan, errors.ErrUnknownField, target.Name, key)
	}

	field := anchorEntity.Identifier()
	if !strings.HasSuffix(key, "_id") {
		if named, ok := anchorEntity.FieldByName("name"); ok {
			field = named
		}
	}
	f, err := buildFilter(anchorEntity.Name, field, raw, intent.KindQuerySingle)
	if err != nil {
		return nil, err
	}
	return &Anchor{Entity: anchorEntity, Path: path, Filter: f}, nil
}

// buildFilter coerces a raw value to the field's semantic type and selects
// the operator: substring matching for free text, exact equality otherwise.
// Mutation properties always use equality.
func buildFilter(entityName string, field ontology.Field, raw string, op intent.Kind) (Filter, error) {
	f := Filter{Field: field.Name, Op: OpEq}

	switch field.Type {
	case ontology.FieldNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Filter{}, errors.NewStageError(errors.StagePlan, errors.ErrInvalidParameter, entityName, field.Name)
		}
		f.Value = Value{Kind: ValueNumber, N: n}
	case ontology.FieldID:
		v := Value{Kind: ValueID, S: raw}
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			v.N = n
			v.Numeric = true
		}
		f.Value = v
	case ontology.FieldEnum:
		f.Value = Value{Kind: ValueString, S: raw}
	default:
		f.Value = Value{Kind: ValueString, S: raw}
		if op != intent.KindMutationCreate {
			f.Op = OpContains
		}
	}
	return f, nil
}
