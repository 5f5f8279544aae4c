package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
)

// HybridExtractor chains the model-backed path with the deterministic
// fallback. The first path returning at least one entity wins; extraction
// never returns an error regardless of input.
type HybridExtractor struct {
	model  domain.EntityExtractor
	rule   domain.EntityExtractor
	logger *logrus.Logger
}

// NewHybridExtractor creates the extraction chain. model may be nil when the
// inference service is disabled, leaving only the deterministic path.
func NewHybridExtractor(model domain.EntityExtractor, rule domain.EntityExtractor, logger *logrus.Logger) *HybridExtractor {
	return &HybridExtractor{model: model, rule: rule, logger: logger}
}

// Extract returns structured medicine entities for prescription text. The
// model path is tried first; when it is unavailable or finds nothing, the
// deterministic path runs instead. Text with no recognizable medicines
// yields an empty list.
func (e *HybridExtractor) Extract(ctx context.Context, text string) []domain.ExtractedEntity {
	if e.model != nil {
		if entities := e.model.Extract(ctx, text); len(entities) > 0 {
			return dedupeEntities(entities)
		}
		e.logger.Debug("Model path yielded no entities, using deterministic path")
	}
	return dedupeEntities(e.rule.Extract(ctx, text))
}

// dedupeEntities collapses entities sharing a normalized name, keeping the
// highest-confidence variant. Input order is preserved for the survivors.
// Deduplication is keyed on name alone, not span position, so repeated
// mentions of one medicine collapse to a single entity.
func dedupeEntities(entities []domain.ExtractedEntity) []domain.ExtractedEntity {
	if len(entities) < 2 {
		return entities
	}

	best := make(map[string]int, len(entities))
	result := make([]domain.ExtractedEntity, 0, len(entities))
	for _, entity := range entities {
		key := domain.NormalizeName(entity.NormalizedName)
		if i, seen := best[key]; seen {
			if entity.Confidence > result[i].Confidence {
				result[i] = entity
			}
			continue
		}
		best[key] = len(result)
		result = append(result, entity)
	}
	return result
}
