package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/sashabaranov/go-openai"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/ontology"
)

const systemPromptTemplate = `You are a semantic parser for building management and energy systems.
You extract structured information from natural-language questions, in Norwegian
or English, about buildings, HVAC systems, sensors and meters.

%s

## Intent kinds
- QUERY_LIST: list entities ("vis alle sensorer", "which zones exist")
- QUERY_SINGLE: find one specific entity ("vis meg bygningen", "get the sensor with id 4")
- QUERY_COUNT: aggregation ("hvor mange sensorer", "how many floors")
- MUTATION_CREATE: create an entity ("opprett en sone", "add a new meter")

## Output format (ONLY valid JSON)
{
    "intent": "QUERY_LIST",
    "entity": "Temperature_Sensor",
    "parameters": {"name": "Operahuset"},
    "fields": [],
    "confidence": 0.9
}

"entity" must be one of the canonical entity type names above. "fields" may
only contain field names declared for that entity. Leave "fields" empty to use
defaults.`

// ModelConfig configures the model-assisted extraction strategy.
//
// Works with any OpenAI-compatible chat-completion service; APIKey is
// optional for local deployments.
type ModelConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	// Timeout bounds the completion call (default: 10s).
	Timeout time.Duration

	// Logger for error logging (optional, defaults to slog.Default()).
	Logger *slog.Logger
}

// ModelStrategy extracts intents with a chat-completion call constrained to
// JSON output. The model's reply is untrusted input: it is repaired, decoded
// and fully revalidated against the ontology before being returned.
type ModelStrategy struct {
	client       *openai.Client
	model        string
	timeout      time.Duration
	registry     *ontology.Registry
	systemPrompt string
	logger       *slog.Logger
}

// NewModelStrategy creates a model-assisted strategy over the given ontology.
func NewModelStrategy(reg *ontology.Registry, cfg ModelConfig) (*ModelStrategy, error) {
	if cfg.Model == "" {
		return nil, errors.WrapInvalid(fmt.Errorf("model is required"),
			"ModelStrategy", "NewModelStrategy", "config validation")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "dummy-key" // Local services don't need a real key.
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ModelStrategy{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		timeout:      timeout,
		registry:     reg,
		systemPrompt: fmt.Sprintf(systemPromptTemplate, reg.LLMContext()),
		logger:       logger.With("component", "ModelStrategy"),
	}, nil
}

// Extract asks the model for a structured intent and revalidates the answer.
// Any entity or field name not present in the ontology rejects the whole
// response so the caller can fall back to the rule-based strategy.
func (s *ModelStrategy) Extract(ctx context.Context, text string, lang ontology.Language) (ExtractedIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return ExtractedIntent{}, errors.WrapTransient(err, "ModelStrategy", "Extract", "chat completion")
	}
	if len(resp.Choices) == 0 {
		return ExtractedIntent{}, errors.WrapTransient(fmt.Errorf("empty completion"),
			"ModelStrategy", "Extract", "chat completion")
	}

	out, err := decodeModelIntent([]byte(resp.Choices[0].Message.Content), s.registry, text, lang)
	if err != nil {
		return ExtractedIntent{}, err
	}
	return out, nil
}

// modelReply is the wire shape the model is instructed to emit.
type modelReply struct {
	Intent     string         `json:"intent"`
	Entity     string         `json:"entity"`
	Parameters map[string]any `json:"parameters"`
	Fields     []string       `json:"fields"`
	Confidence float64        `json:"confidence"`
}

// decodeModelIntent repairs, decodes and ontology-validates a model reply.
func decodeModelIntent(data []byte, reg *ontology.Registry, text string, lang ontology.Language) (ExtractedIntent, error) {
	var reply modelReply
	if err := unmarshalRepaired(data, &reply); err != nil {
		return ExtractedIntent{}, errors.WrapInvalid(err, "ModelStrategy", "Extract", "response decode")
	}

	kind, ok := ParseKind(reply.Intent)
	if !ok {
		return ExtractedIntent{}, errors.WrapInvalid(fmt.Errorf("unknown intent kind %q", reply.Intent),
			"ModelStrategy", "Extract", "response validation")
	}

	entity, ok := reg.Entity(reply.Entity)
	if !ok {
		return ExtractedIntent{}, errors.NewStageError(errors.StageExtract, errors.ErrUnknownEntity, reply.Entity, "")
	}
	for _, f := range reply.Fields {
		if _, ok := entity.FieldByName(f); !ok {
			return ExtractedIntent{}, errors.NewStageError(errors.StageExtract, errors.ErrUnknownField, entity.Name, f)
		}
	}

	confidence := reply.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}

	return ExtractedIntent{
		Kind:       kind,
		Entity:     entity.Name,
		Parameters: stringifyParameters(reply.Parameters),
		Fields:     reply.Fields,
		Confidence: confidence,
		Query:      text,
		Language:   lang,
	}, nil
}

// unmarshalRepaired unmarshals JSON, attempting to repair malformed output
// with jsonrepair before retrying on a syntax error.
func unmarshalRepaired(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return repairErr
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

func stringifyParameters(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			// Dropped: a null parameter carries no filter value.
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}
