package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
)

// InteractionAggregator checks a medicine list against every configured
// interaction source and merges the results into one safety report.
type InteractionAggregator struct {
	sources []domain.InteractionSource
	logger  *logrus.Logger
}

// NewInteractionAggregator creates the aggregator over the configured
// sources. The local curated source should come first so its records lead
// the report.
func NewInteractionAggregator(sources []domain.InteractionSource, logger *logrus.Logger) *InteractionAggregator {
	return &InteractionAggregator{sources: sources, logger: logger}
}

// CheckAll queries every source for every unordered pair of the given drugs
// and aggregates the findings. Records are deduplicated by pair and source;
// the same pair reported by two sources keeps both records for source
// transparency. Overall risk is the worst severity observed. Provider
// outages surface as missing records, never as an error.
func (a *InteractionAggregator) CheckAll(ctx context.Context, drugNames []string) *domain.SafetyReport {
	report := &domain.SafetyReport{
		Interactions: []domain.InteractionRecord{},
		SeveritySummary: map[domain.Severity]int{
			domain.SeverityHigh:   0,
			domain.SeverityMedium: 0,
			domain.SeverityLow:    0,
			domain.SeverityInfo:   0,
		},
		OverallRisk:    domain.RiskNone,
		SourcesQueried: len(a.sources),
		GeneratedAt:    time.Now(),
	}

	seen := make(map[string]bool)
	for i := 0; i < len(drugNames); i++ {
		for j := i + 1; j < len(drugNames); j++ {
			drugA := domain.NormalizeName(drugNames[i])
			drugB := domain.NormalizeName(drugNames[j])
			if drugA == "" || drugB == "" || drugA == drugB {
				continue
			}

			for _, source := range a.sources {
				rec, err := source.LookupPair(ctx, drugA, drugB)
				if err != nil {
					a.logger.WithError(err).WithFields(logrus.Fields{
						"source": source.SourceType(),
						"drug_a": drugA,
						"drug_b": drugB,
					}).Warn("Interaction source lookup failed")
					continue
				}
				if rec == nil {
					continue
				}

				key := rec.PairKey() + "|" + string(rec.Source)
				if seen[key] {
					continue
				}
				seen[key] = true
				report.Interactions = append(report.Interactions, *rec)
				report.SeveritySummary[rec.Severity]++
			}
		}
	}

	report.OverallRisk = overallRisk(report.Interactions)
	report.Recommendations = buildRecommendations(report.SeveritySummary)

	a.logger.WithFields(logrus.Fields{
		"medicines":    len(drugNames),
		"interactions": len(report.Interactions),
		"overall_risk": report.OverallRisk,
	}).Info("Interaction check completed")

	return report
}

// ValidateSafety is the name the prescription-analysis flow uses for
// CheckAll. Behavior is identical.
func (a *InteractionAggregator) ValidateSafety(ctx context.Context, drugNames []string) *domain.SafetyReport {
	return a.CheckAll(ctx, drugNames)
}

// overallRisk is the worst severity among the records, or NONE when the
// report is empty. Worst-case aggregation is deliberate: a safety report
// must not understate risk by averaging.
func overallRisk(records []domain.InteractionRecord) domain.RiskLevel {
	if len(records) == 0 {
		return domain.RiskNone
	}
	worst := domain.SeverityInfo
	for _, rec := range records {
		if rec.Severity.Priority() > worst.Priority() {
			worst = rec.Severity
		}
	}
	return domain.RiskFromSeverity(worst)
}

// buildRecommendations renders the per-severity guidance lines for a report.
func buildRecommendations(summary map[domain.Severity]int) []string {
	var recommendations []string

	total := 0
	for _, count := range summary {
		total += count
	}
	if total == 0 {
		return []string{"No known drug interactions found. Continue current medication regimen."}
	}

	if summary[domain.SeverityHigh] > 0 {
		recommendations = append(recommendations,
			"HIGH RISK: Consult healthcare provider immediately before taking these medications together.",
			"Consider alternative medications or adjusted dosing schedules.")
	}
	if summary[domain.SeverityMedium] > 0 {
		recommendations = append(recommendations,
			"MEDIUM RISK: Monitor closely for adverse effects. Consider dose adjustments.",
			"Regular monitoring may be required.")
	}
	if summary[domain.SeverityLow] > 0 {
		recommendations = append(recommendations,
			"LOW RISK: Minor interactions detected. Monitor for any unusual symptoms.")
	}
	if summary[domain.SeverityInfo] > 0 {
		recommendations = append(recommendations,
			"Beneficial interactions detected. These combinations may enhance effectiveness.")
	}

	return recommendations
}
