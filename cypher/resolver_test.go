package cypher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/ontology"
	"github.com/c360/semquery/planner"
)

func setup(t *testing.T) (*planner.Planner, *Resolver) {
	t.Helper()
	reg, err := ontology.BuildingOntology()
	require.NoError(t, err)
	return planner.New(reg, 0), New(reg)
}

func TestResolveListNoFilter(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryList, Entity: "Temperature_Sensor", Confidence: 1.0,
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	want := "MATCH (n:brick_Temperature_Sensor)\n" +
		"RETURN n {.id, .name, .unit} AS row\n" +
		"LIMIT 20"
	assert.Equal(t, want, q)
}

func TestResolveSingleWithIDFilter(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQuerySingle, Entity: "Building", Confidence: 1.0,
		Parameters: map[string]string{"id": "7"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	want := "MATCH (n:brick_Building)\n" +
		"WHERE n.id = 7\n" +
		"RETURN n {.id, .name, .address, .area_sqm} AS row\n" +
		"LIMIT 1"
	assert.Equal(t, want, q)
}

func TestResolveSingleBoundsToOneRow(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQuerySingle, Entity: "Building", Confidence: 1.0,
		Parameters: map[string]string{"name": "Opera"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	// A CONTAINS filter can match many nodes; the query itself must cap the
	// result at one row.
	assert.Contains(t, q, "WHERE n.name CONTAINS 'Opera'")
	assert.True(t, strings.HasSuffix(q, "\nLIMIT 1"), "single query must end with LIMIT 1, got:\n%s", q)
}

func TestResolveStringFilterUsesContains(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQuerySingle, Entity: "Building", Confidence: 1.0,
		Parameters: map[string]string{"name": "Operahuset"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)
	assert.Contains(t, q, "WHERE n.name CONTAINS 'Operahuset'")
}

func TestResolveAnchorPattern(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryList, Entity: "Temperature_Sensor", Confidence: 1.0,
		Parameters: map[string]string{"building_name": "Operahuset"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	assert.Contains(t, q, "MATCH (a:brick_Building)"+
		"-[:brick_hasPart]->(h1:brick_Floor)"+
		"-[:brick_hasPart]->(h2:brick_HVAC_Zone)"+
		"-[:brick_hasPoint]->(n:brick_Temperature_Sensor)")
	assert.Contains(t, q, "WHERE a.name CONTAINS 'Operahuset'")
}

func TestResolveDirectAnchorBindsTargetOnly(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryList, Entity: "Floor", Confidence: 1.0,
		Parameters: map[string]string{"building_id": "7"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	// Single-hop anchor: no intermediate variables.
	assert.Contains(t, q, "MATCH (a:brick_Building)-[:brick_hasPart]->(n:brick_Floor)")
	assert.NotContains(t, q, "h1")
	assert.Contains(t, q, "WHERE a.id = 7")
}

func TestResolveCount(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryCount, Entity: "Floor", Confidence: 1.0,
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	want := "MATCH (n:brick_Floor)\nRETURN count(n) AS count"
	assert.Equal(t, want, q)
}

func TestResolveCountDropsIncludes(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryCount, Entity: "Temperature_Sensor", Confidence: 1.0,
		Fields: []string{"timeseries"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	// An OPTIONAL MATCH left in a count query would multiply rows and
	// inflate count(n) per related node.
	want := "MATCH (n:brick_Temperature_Sensor)\nRETURN count(n) AS count"
	assert.Equal(t, want, q)
}

func TestResolveCreate(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindMutationCreate, Entity: "Floor", Confidence: 1.0,
		Parameters: map[string]string{"level": "2", "name": "Plan 2"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	assert.Contains(t, q, "CREATE (n:brick_Floor {level: 2, name: 'Plan 2'})")
	assert.Contains(t, q, "RETURN n {.id, .name, .level} AS row")
}

func TestResolveIncludeBlock(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQuerySingle, Entity: "Temperature_Sensor", Confidence: 1.0,
		Fields: []string{"name", "timeseries"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	assert.Contains(t, q, "OPTIONAL MATCH (n)-[:brick_hasTimeseries]->(i1_1:brick_Timeseries)")
	assert.Contains(t, q, "collect(DISTINCT i1_1 {.id, .external_id, .resolution}) AS timeseries")
}

func TestResolveEscapesInjection(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryList, Entity: "Building", Confidence: 1.0,
		Parameters: map[string]string{"name": "x' OR 1=1 //\\ \n DETACH DELETE"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)

	assert.Contains(t, q, `CONTAINS 'x\' OR 1=1 //\\  DETACH DELETE'`)
	assert.NotContains(t, q, "x' OR")
	assert.False(t, strings.Contains(q, "\n DETACH"), "control characters must be stripped")
}

func TestResolveDeterministic(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryList, Entity: "Building", Confidence: 1.0,
		Parameters: map[string]string{"name": "Opera", "energy_class": "A"},
	})
	require.NoError(t, err)

	first, err := r.Resolve(plan)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.Resolve(plan)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestProjectionOnlyPlanFields(t *testing.T) {
	p, r := setup(t)
	plan, err := p.Plan(intent.ExtractedIntent{
		Kind: intent.KindQueryList, Entity: "Building", Confidence: 1.0,
		Fields: []string{"name"},
	})
	require.NoError(t, err)

	q, err := r.Resolve(plan)
	require.NoError(t, err)
	assert.Contains(t, q, "RETURN n {.id, .name} AS row")
	assert.NotContains(t, q, "address")
}
