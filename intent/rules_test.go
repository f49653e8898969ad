package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/ontology"
)

func buildingRegistry(t *testing.T) *ontology.Registry {
	t.Helper()
	reg, err := ontology.BuildingOntology()
	require.NoError(t, err)
	return reg
}

func productRegistry(t *testing.T) *ontology.Registry {
	t.Helper()
	reg, err := ontology.NewRegistry([]ontology.EntityType{
		{
			Name: "Product", Label: "l_Product", GraphQL: "product", Plural: "products",
			Display: map[ontology.Language]string{ontology.LanguageEnglish: "products"},
			Fields: []ontology.Field{
				{Name: "id", Type: ontology.FieldID},
				{Name: "name", Type: ontology.FieldString},
				{Name: "price", Type: ontology.FieldNumber, Primary: true},
			},
			Synonyms: map[ontology.Language][]string{
				ontology.LanguageEnglish: {"product", "item"},
			},
		},
	}, nil, nil)
	require.NoError(t, err)
	return reg
}

func TestRuleExtractNorwegianList(t *testing.T) {
	s := NewRuleStrategy(buildingRegistry(t))

	out, err := s.Extract(context.Background(), "Vis alle temperatursensorer", ontology.LanguageNorwegian)
	require.NoError(t, err)

	assert.Equal(t, KindQueryList, out.Kind)
	assert.Equal(t, "Temperature_Sensor", out.Entity)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Empty(t, out.Parameters)
}

func TestRuleExtractSingleWithID(t *testing.T) {
	s := NewRuleStrategy(productRegistry(t))

	out, err := s.Extract(context.Background(), "Get the product with id 1", ontology.LanguageEnglish)
	require.NoError(t, err)

	assert.Equal(t, KindQuerySingle, out.Kind)
	assert.Equal(t, "Product", out.Entity)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Equal(t, "1", out.Parameters["id"])
}

func TestRuleExtractAmbiguous(t *testing.T) {
	s := NewRuleStrategy(buildingRegistry(t))

	out, err := s.Extract(context.Background(), "asdf", ontology.LanguageNorwegian)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.Confidence)
	assert.Empty(t, out.Entity)
}

func TestRuleExtractEntityOnlyDefaultsToList(t *testing.T) {
	s := NewRuleStrategy(buildingRegistry(t))

	out, err := s.Extract(context.Background(), "temperatursensorer", ontology.LanguageNorwegian)
	require.NoError(t, err)

	assert.Equal(t, KindQueryList, out.Kind)
	assert.Equal(t, "Temperature_Sensor", out.Entity)
	assert.Equal(t, 0.5, out.Confidence)
}

func TestRuleExtractKinds(t *testing.T) {
	reg := buildingRegistry(t)
	s := NewRuleStrategy(reg)

	tests := []struct {
		name string
		text string
		lang ontology.Language
		kind Kind
	}{
		{name: "norwegian count", text: "Hvor mange etasjer finnes?", lang: ontology.LanguageNorwegian, kind: KindQueryCount},
		{name: "english count", text: "How many zones are there", lang: ontology.LanguageEnglish, kind: KindQueryCount},
		{name: "norwegian create", text: "Opprett en ny sone", lang: ontology.LanguageNorwegian, kind: KindMutationCreate},
		{name: "english create", text: "Create a building", lang: ontology.LanguageEnglish, kind: KindMutationCreate},
		{name: "norwegian single", text: "Hva er sone 'Foyer'", lang: ontology.LanguageNorwegian, kind: KindQuerySingle},
		{name: "english list", text: "Show all electrical meters", lang: ontology.LanguageEnglish, kind: KindQueryList},
		{name: "list beats single", text: "Get all pumps", lang: ontology.LanguageEnglish, kind: KindQueryList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Extract(context.Background(), tt.text, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, out.Kind)
		})
	}
}

func TestRuleExtractQuotedName(t *testing.T) {
	s := NewRuleStrategy(buildingRegistry(t))

	out, err := s.Extract(context.Background(), `Finn bygningen "Operahuset"`, ontology.LanguageNorwegian)
	require.NoError(t, err)

	assert.Equal(t, KindQuerySingle, out.Kind)
	assert.Equal(t, "Building", out.Entity)
	assert.Equal(t, "Operahuset", out.Parameters["name"])
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("query_list")
	assert.True(t, ok)
	assert.Equal(t, KindQueryList, k)

	_, ok = ParseKind("query_everything")
	assert.False(t, ok)
}
