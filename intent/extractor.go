package intent

import (
	"context"
	"log/slog"

	"github.com/c360/semquery/ontology"
)

// Extractor selects between the model-assisted and rule-based strategies.
//
// The model strategy is primary when configured; on error, timeout, or a
// response the ontology validation rejected, the extractor degrades to the
// rule-based result. The degradation is part of the contract: extraction
// itself never fails, only confidence drops.
type Extractor struct {
	primary  Strategy
	fallback Strategy
	logger   *slog.Logger

	// FallbackHook is invoked whenever the primary strategy is abandoned,
	// used for metrics. Optional.
	FallbackHook func()
}

// NewExtractor builds the extraction front. primary may be nil, in which case
// the rule-based strategy serves every request directly.
func NewExtractor(reg *ontology.Registry, primary Strategy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		primary:  primary,
		fallback: NewRuleStrategy(reg),
		logger:   logger.With("component", "Extractor"),
	}
}

// Extract runs the configured strategy chain.
func (e *Extractor) Extract(ctx context.Context, text string, lang ontology.Language) (ExtractedIntent, error) {
	if e.primary != nil {
		out, err := e.primary.Extract(ctx, text, lang)
		if err == nil {
			return out, nil
		}
		e.logger.Warn("model extraction failed, using rule-based fallback",
			"error", err, "language", string(lang))
		if e.FallbackHook != nil {
			e.FallbackHook()
		}
	}
	return e.fallback.Extract(ctx, text, lang)
}
