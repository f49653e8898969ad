package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/errors"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := BuildingOntology()
	require.NoError(t, err)
	return reg
}

func TestResolveEntityExact(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name   string
		token  string
		entity string
	}{
		{name: "canonical name", token: "Temperature_Sensor", entity: "Temperature_Sensor"},
		{name: "canonical with spaces", token: "temperature sensor", entity: "Temperature_Sensor"},
		{name: "norwegian synonym", token: "temperatursensor", entity: "Temperature_Sensor"},
		{name: "english synonym", token: "building", entity: "Building"},
		{name: "norwegian building", token: "bygning", entity: "Building"},
		{name: "case insensitive", token: "BYGNING", entity: "Building"},
		{name: "whitespace normalized", token: "  hvac   zone  ", entity: "HVAC_Zone"},
		{name: "ahu synonym", token: "aggregat", entity: "Air_Handling_Unit"},
		{name: "meter synonym", token: "strømmåler", entity: "Electrical_Meter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := reg.ResolveEntity(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.entity, e.Name)
		})
	}
}

func TestResolveEntitySubstring(t *testing.T) {
	reg := testRegistry(t)

	// Norwegian plural is not in the synonym table; the singular synonym is a
	// substring of the token.
	e, err := reg.ResolveEntity("temperatursensorer")
	require.NoError(t, err)
	assert.Equal(t, "Temperature_Sensor", e.Name)

	e, err = reg.ResolveEntity("operahuset i oslo")
	require.NoError(t, err)
	assert.Equal(t, "Building", e.Name)
}

func TestResolveEntityNotFound(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.ResolveEntity("asdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownEntity))

	_, err = reg.ResolveEntity("   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownEntity))
}

func TestResolveEntityPrefixTieBreak(t *testing.T) {
	// Two entities share the synonym "unit"; the one whose canonical name
	// shares the longest prefix with the token wins.
	entities := []EntityType{
		{
			Name: "Meter_Unit", Label: "l_Meter_Unit", GraphQL: "meterUnit", Plural: "meterUnits",
			Fields:   []Field{{Name: "id", Type: FieldID}},
			Synonyms: map[Language][]string{LanguageEnglish: {"unit"}},
		},
		{
			Name: "Fan_Unit", Label: "l_Fan_Unit", GraphQL: "fanUnit", Plural: "fanUnits",
			Fields:   []Field{{Name: "id", Type: FieldID}},
			Synonyms: map[Language][]string{LanguageEnglish: {"unit"}},
		},
	}
	reg, err := NewRegistry(entities, nil, nil)
	require.NoError(t, err)

	e, err := reg.ResolveEntity("fan_unit 3")
	require.NoError(t, err)
	assert.Equal(t, "Fan_Unit", e.Name)

	// No prefix advantage: declaration order decides.
	e, err = reg.ResolveEntity("unit")
	require.NoError(t, err)
	assert.Equal(t, "Meter_Unit", e.Name)
}

func TestResolveRelationPathDirect(t *testing.T) {
	reg := testRegistry(t)
	building, ok := reg.Entity("Building")
	require.True(t, ok)

	path, err := reg.ResolveRelationPath(building, "floors")
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "Floor", path[0].Target)
	assert.Equal(t, EdgeHasPart, path[0].EdgeType)

	// Target entity name also resolves.
	path, err = reg.ResolveRelationPath(building, "Floor")
	require.NoError(t, err)
	require.Len(t, path, 1)
}

func TestResolveRelationPathHopChain(t *testing.T) {
	reg := testRegistry(t)
	building, ok := reg.Entity("Building")
	require.True(t, ok)

	path, err := reg.ResolveRelationPath(building, "zones")
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, "Floor", path[0].Target)
	assert.Equal(t, "HVAC_Zone", path[1].Target)

	path, err = reg.ResolveRelationPath(building, "sensors")
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "Temperature_Sensor", path[2].Target)
}

func TestResolveRelationPathNotFound(t *testing.T) {
	reg := testRegistry(t)
	floor, ok := reg.Entity("Floor")
	require.True(t, ok)

	_, err := reg.ResolveRelationPath(floor, "meters")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownEntity))
}

func TestShortestChainWins(t *testing.T) {
	// A direct relation and a 2-hop chain both reach B from A; the direct
	// relation must always win.
	entities := []EntityType{
		{Name: "A", Label: "l_A", GraphQL: "a", Plural: "as", Fields: []Field{{Name: "id", Type: FieldID}}},
		{Name: "B", Label: "l_B", GraphQL: "b", Plural: "bs", Fields: []Field{{Name: "id", Type: FieldID}}},
		{Name: "C", Label: "l_C", GraphQL: "c", Plural: "cs", Fields: []Field{{Name: "id", Type: FieldID}}},
	}
	relations := []Relation{
		{Source: "A", Target: "C", Name: "has", Alias: "cs", EdgeType: "l_has", Many: true},
		{Source: "C", Target: "B", Name: "has", Alias: "bs", EdgeType: "l_has", Many: true},
		{Source: "A", Target: "B", Name: "owns", Alias: "bs", EdgeType: "l_owns", Many: true},
	}
	chains := []HopChain{
		{Alias: "bs", Source: "A", Target: "B", Hops: []string{"cs", "bs"}},
	}
	reg, err := NewRegistry(entities, relations, chains)
	require.NoError(t, err)

	a, ok := reg.Entity("A")
	require.True(t, ok)

	path, err := reg.ResolveRelationPath(a, "bs")
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "l_owns", path[0].EdgeType)

	path, err = reg.ResolveRelationPath(a, "B")
	require.NoError(t, err)
	require.Len(t, path, 1)
}

func TestEqualLengthChainsResolveByDeclarationOrder(t *testing.T) {
	entities := []EntityType{
		{Name: "A", Label: "l_A", GraphQL: "a", Plural: "as", Fields: []Field{{Name: "id", Type: FieldID}}},
		{Name: "B", Label: "l_B", GraphQL: "b", Plural: "bs", Fields: []Field{{Name: "id", Type: FieldID}}},
		{Name: "X", Label: "l_X", GraphQL: "x", Plural: "xs", Fields: []Field{{Name: "id", Type: FieldID}}},
		{Name: "Y", Label: "l_Y", GraphQL: "y", Plural: "ys", Fields: []Field{{Name: "id", Type: FieldID}}},
	}
	relations := []Relation{
		{Source: "A", Target: "X", Name: "has", Alias: "xs", EdgeType: "l_hasX", Many: true},
		{Source: "X", Target: "B", Name: "has", Alias: "bs", EdgeType: "l_XtoB", Many: true},
		{Source: "A", Target: "Y", Name: "has", Alias: "ys", EdgeType: "l_hasY", Many: true},
		{Source: "Y", Target: "B", Name: "has", Alias: "bs", EdgeType: "l_YtoB", Many: true},
	}
	chains := []HopChain{
		{Alias: "viaX", Source: "A", Target: "B", Hops: []string{"xs", "bs"}},
		{Alias: "viaY", Source: "A", Target: "B", Hops: []string{"ys", "bs"}},
	}
	reg, err := NewRegistry(entities, relations, chains)
	require.NoError(t, err)

	a, ok := reg.Entity("A")
	require.True(t, ok)

	// Both chains reach B in two hops; the earlier declaration wins.
	path, err := reg.ResolveRelationPath(a, "B")
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, "l_hasX", path[0].EdgeType)
}

func TestNewRegistryValidation(t *testing.T) {
	valid := EntityType{
		Name: "A", Label: "l_A", GraphQL: "a", Plural: "as",
		Fields: []Field{{Name: "id", Type: FieldID}},
	}

	tests := []struct {
		name      string
		entities  []EntityType
		relations []Relation
		chains    []HopChain
	}{
		{
			name: "no entities",
		},
		{
			name: "first field not identifier",
			entities: []EntityType{{
				Name: "A", Label: "l", GraphQL: "a", Plural: "as",
				Fields: []Field{{Name: "name", Type: FieldString}},
			}},
		},
		{
			name:     "duplicate entity",
			entities: []EntityType{valid, valid},
		},
		{
			name:      "relation to unknown entity",
			entities:  []EntityType{valid},
			relations: []Relation{{Source: "A", Target: "Nope", Name: "has", Alias: "nopes", EdgeType: "e"}},
		},
		{
			name:     "chain with unresolvable hop",
			entities: []EntityType{valid},
			chains:   []HopChain{{Alias: "x", Source: "A", Target: "A", Hops: []string{"missing"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.entities, tt.relations, tt.chains)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestFieldsOfAndIdentifier(t *testing.T) {
	reg := testRegistry(t)
	sensor, ok := reg.Entity("Temperature_Sensor")
	require.True(t, ok)

	fields := reg.FieldsOf(sensor)
	require.NotEmpty(t, fields)
	assert.Equal(t, "id", sensor.Identifier().Name)
	assert.Equal(t, FieldID, sensor.Identifier().Type)

	_, ok = sensor.FieldByName("unit")
	assert.True(t, ok)
	_, ok = sensor.FieldByName("voltage")
	assert.False(t, ok)
}

func TestLLMContextDeterministic(t *testing.T) {
	reg := testRegistry(t)

	first := reg.LLMContext()
	second := reg.LLMContext()
	assert.Equal(t, first, second)

	assert.Contains(t, first, "Temperature_Sensor")
	assert.Contains(t, first, "brick_Building")
	assert.Contains(t, first, "TRAVERSAL SHORTCUTS")
}

func TestDisplayNameFallback(t *testing.T) {
	e := EntityType{
		Name:    "Thing",
		Display: map[Language]string{LanguageEnglish: "things"},
	}
	assert.Equal(t, "things", e.DisplayName(LanguageNorwegian))
	assert.Equal(t, "Thing", EntityType{Name: "Thing"}.DisplayName(LanguageEnglish))
}
