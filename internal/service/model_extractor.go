package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/catalog"
	"github.com/prescription-analysis-server/internal/domain"
	"github.com/prescription-analysis-server/pkg/external"
)

// attributeWindow is how far past a detected span the extractor looks for
// dosage and frequency attributes belonging to that medicine.
const attributeWindow = 48

// ModelBackedExtractor is the primary extraction path. It sends text to the
// biomedical language model service for span detection, then refines each
// span against the reference index and scores it with the additive
// confidence heuristic.
type ModelBackedExtractor struct {
	model  *external.ModelClient
	index  *catalog.Index
	logger *logrus.Logger
}

// NewModelBackedExtractor creates the model-backed extractor.
func NewModelBackedExtractor(model *external.ModelClient, index *catalog.Index, logger *logrus.Logger) *ModelBackedExtractor {
	return &ModelBackedExtractor{model: model, index: index, logger: logger}
}

// Extract runs model span detection over the normalized text. It returns nil
// both when the model is unavailable and when it finds nothing, so the
// caller falls through to the deterministic path in either case.
func (e *ModelBackedExtractor) Extract(ctx context.Context, text string) []domain.ExtractedEntity {
	normalized := PreprocessText(text)
	if normalized == "" {
		return nil
	}

	spans, err := e.model.Analyze(ctx, normalized)
	if err != nil {
		e.logger.WithError(err).Warn("Model extraction unavailable, falling back to deterministic path")
		return nil
	}

	entities := make([]domain.ExtractedEntity, 0, len(spans))
	for _, span := range spans {
		if span.Text == "" {
			continue
		}

		entity := domain.ExtractedEntity{
			RawSpan:        span.Text,
			NormalizedName: domain.NormalizeName(span.Text),
			Source:         domain.ExtractionModel,
		}

		// Additive confidence heuristic, clamped to [0,1]:
		// exact catalog match 0.3, adjacent dosage 0.2, frequency 0.2,
		// model score scaled into the remaining 0.3.
		confidence := clamp01(span.Confidence) * 0.3

		if record, err := e.index.Lookup(span.Text); err == nil {
			entity.NormalizedName = record.Name
			confidence += 0.3
		}

		window := attributeText(normalized, span.End)
		if dosage := dosagePattern.FindString(window); dosage != "" {
			entity.Dosage = dosage
			confidence += 0.2
		}
		if frequency := frequencyPattern.FindString(window); frequency != "" {
			entity.Frequency = frequency
			confidence += 0.2
		}
		if duration := durationPattern.FindStringSubmatch(window); duration != nil {
			entity.Duration = duration[1]
		}

		entity.Confidence = clamp01(confidence)
		entities = append(entities, entity)
	}

	e.logger.WithFields(logrus.Fields{
		"entities": len(entities),
		"path":     domain.ExtractionModel,
	}).Debug("Model extraction completed")

	return entities
}

// attributeText returns the slice of text following a span where that
// span's dosing attributes are expected to appear.
func attributeText(text string, from int) string {
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		from = len(text)
	}
	end := from + attributeWindow
	if end > len(text) {
		end = len(text)
	}
	return text[from:end]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
