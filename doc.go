// Package semquery compiles natural-language questions about a building-energy
// knowledge graph into graph queries and formats the results back into
// natural language.
//
// # Architecture
//
// One request flows through a strictly linear pipeline:
//
//	┌──────────────┐   ┌──────────────┐   ┌──────────────┐
//	│    Intent    │   │    Query     │   │  Generators  │
//	│  Extraction  │──►│   Planning   │──►│ (GraphQL +   │
//	│ (rules/model)│   │              │   │ graph query) │
//	└──────────────┘   └──────────────┘   └──────┬───────┘
//	                                             │
//	┌──────────────┐   ┌──────────────┐          │
//	│   Response   │   │    Graph     │          │
//	│  Formatting  │◄──│  Execution   │◄─────────┘
//	│   (no/en)    │   │ (NATS req/rep)│
//	└──────────────┘   └──────────────┘
//
// Every stage validates its input against the ontology registry, so an
// unknown entity, field or parameter is rejected before any query reaches
// the graph service. The pipeline holds no per-request state outside the
// request itself; any number of questions can run concurrently.
//
// # Packages
//
// Compilation:
//   - ontology: entity types, relations, traversal shortcuts, bilingual synonyms
//   - intent: rule-based and model-assisted intent extraction with fallback
//   - planner: validated intent -> typed QueryPlan
//   - gql: QueryPlan -> GraphQL document
//   - cypher: QueryPlan -> graph query string
//
// Execution and presentation:
//   - graph: query execution over NATS request/reply
//   - format: result rows -> natural-language answer (Norwegian/English)
//   - pipeline: end-to-end orchestration, state machine, observability
//
// Infrastructure:
//   - config: JSON configuration with env expansion and validation
//   - errors: structured error handling with classification
//   - metric: Prometheus metrics
//   - pkg/retry: retry policies
//
// # Usage
//
// Assemble a pipeline from an ontology, an intent extractor and a graph
// client:
//
//	reg, _ := ontology.BuildingOntology()
//	extractor := intent.NewExtractor(reg, nil, logger)
//	client, _ := graph.Connect(graph.Config{URL: natsURL, Subject: "graph.query"}, logger)
//	p := pipeline.New(reg, extractor, client, pipeline.Options{})
//
//	answer, err := p.Ask(ctx, "Vis alle temperatursensorer i Operahuset", ontology.LanguageNorwegian)
//
// The model-assisted extraction strategy is optional; without it the
// extractor runs on rules alone. With it, any model failure falls back to
// rules so a question is never lost to a model outage.
//
// # Binary
//
// The semquery binary answers a question from its arguments or runs an
// interactive stdin loop:
//
//	semquery --config configs/example.json "Hvor mange etasjer har Operahuset?"
//	semquery --lang=en --show-queries
package semquery
