package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
)

// PrescriptionAnalyzer is the caller-facing facade over extraction and
// interaction checking. It is stateless across calls and safe for
// concurrent use.
type PrescriptionAnalyzer struct {
	extractor  domain.EntityExtractor
	aggregator *InteractionAggregator
	logger     *logrus.Logger
}

// NewPrescriptionAnalyzer creates the analysis facade.
func NewPrescriptionAnalyzer(extractor domain.EntityExtractor, aggregator *InteractionAggregator, logger *logrus.Logger) *PrescriptionAnalyzer {
	return &PrescriptionAnalyzer{
		extractor:  extractor,
		aggregator: aggregator,
		logger:     logger,
	}
}

// AnalyzePrescription extracts medicine entities from free text and checks
// the extracted medicines against every interaction source. Text with no
// recognizable medicines yields an empty entity list and a NONE-risk
// report; the method never returns an error.
func (p *PrescriptionAnalyzer) AnalyzePrescription(ctx context.Context, text string) *domain.PrescriptionAnalysis {
	startTime := time.Now()

	entities := p.extractor.Extract(ctx, text)

	names := make([]string, 0, len(entities))
	for _, entity := range entities {
		names = append(names, entity.NormalizedName)
	}
	report := p.aggregator.ValidateSafety(ctx, names)

	p.logger.WithFields(logrus.Fields{
		"entities":        len(entities),
		"interactions":    len(report.Interactions),
		"overall_risk":    report.OverallRisk,
		"processing_time": time.Since(startTime),
	}).Info("Prescription analysis completed")

	return &domain.PrescriptionAnalysis{
		Entities:     entities,
		SafetyReport: report,
	}
}
