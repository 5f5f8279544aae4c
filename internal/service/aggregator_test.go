package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescription-analysis-server/internal/domain"
)

// failingSource simulates an external provider whose lookups error out.
type failingSource struct{}

func (f *failingSource) SourceType() domain.InteractionSourceType { return domain.SourceOpenFDA }

func (f *failingSource) LookupPair(ctx context.Context, drugA, drugB string) (*domain.InteractionRecord, error) {
	return nil, errors.New("connection timed out")
}

func (f *failingSource) LookupSingle(ctx context.Context, drug string) ([]domain.InteractionRecord, error) {
	return nil, errors.New("connection timed out")
}

func TestLocalInteractionSource(t *testing.T) {
	ctx := context.Background()
	source := NewLocalInteractionSource()

	t.Run("Known_Pair", func(t *testing.T) {
		rec, err := source.LookupPair(ctx, "warfarin", "aspirin")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, domain.SeverityHigh, rec.Severity)
		assert.Equal(t, domain.SourceLocal, rec.Source)
		assert.NotEmpty(t, rec.Recommendation)
		assert.NotEmpty(t, rec.Monitoring)
	})

	t.Run("Pair_Order_Irrelevant", func(t *testing.T) {
		forward, err := source.LookupPair(ctx, "warfarin", "ibuprofen")
		require.NoError(t, err)
		reversed, err := source.LookupPair(ctx, "ibuprofen", "warfarin")
		require.NoError(t, err)
		require.NotNil(t, forward)
		require.NotNil(t, reversed)
		assert.Equal(t, forward.Description, reversed.Description)
	})

	t.Run("Case_And_Whitespace_Normalized", func(t *testing.T) {
		rec, err := source.LookupPair(ctx, "  Warfarin ", "ASPIRIN")
		require.NoError(t, err)
		assert.NotNil(t, rec)
	})

	t.Run("Unknown_Pair", func(t *testing.T) {
		rec, err := source.LookupPair(ctx, "paracetamol", "loratadine")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Single_Drug_Lookup", func(t *testing.T) {
		records, err := source.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("Every_Record_Has_Explicit_Severity", func(t *testing.T) {
		for _, rec := range curatedInteractions {
			assert.GreaterOrEqual(t, rec.Severity.Priority(), 0, "pair %s/%s", rec.DrugA, rec.DrugB)
		}
	})
}

func TestInteractionAggregator_CheckAll(t *testing.T) {
	ctx := context.Background()
	local := NewLocalInteractionSource()

	t.Run("High_Risk_Pair", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local}, testLogger())
		report := agg.CheckAll(ctx, []string{"Warfarin", "Aspirin"})

		require.Len(t, report.Interactions, 1)
		assert.Equal(t, domain.RiskHigh, report.OverallRisk)
		assert.Equal(t, 1, report.SeveritySummary[domain.SeverityHigh])
		assert.Contains(t, report.Recommendations[0], "HIGH RISK")
		assert.Equal(t, 1, report.SourcesQueried)
	})

	t.Run("Worst_Case_Aggregation", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local}, testLogger())
		// Metformin+alcohol is MEDIUM, warfarin+aspirin is HIGH. Overall must
		// be the worst of the two, never an average.
		report := agg.CheckAll(ctx, []string{"warfarin", "aspirin", "metformin", "alcohol"})

		assert.Equal(t, domain.RiskHigh, report.OverallRisk)
		assert.Equal(t, 1, report.SeveritySummary[domain.SeverityHigh])
		assert.Equal(t, 1, report.SeveritySummary[domain.SeverityMedium])
	})

	t.Run("No_Interactions", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local}, testLogger())
		report := agg.CheckAll(ctx, []string{"paracetamol", "loratadine"})

		assert.Empty(t, report.Interactions)
		assert.Equal(t, domain.RiskNone, report.OverallRisk)
		require.Len(t, report.Recommendations, 1)
		assert.Contains(t, report.Recommendations[0], "No known drug interactions")
	})

	t.Run("Failing_Source_Does_Not_Block", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local, &failingSource{}}, testLogger())
		report := agg.CheckAll(ctx, []string{"warfarin", "aspirin"})

		require.Len(t, report.Interactions, 1)
		assert.Equal(t, domain.RiskHigh, report.OverallRisk)
	})

	t.Run("Duplicate_And_Blank_Names_Skipped", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local}, testLogger())
		report := agg.CheckAll(ctx, []string{"warfarin", "Warfarin", "", "aspirin"})

		assert.Len(t, report.Interactions, 1)
	})

	t.Run("Info_Only_Pairs", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local}, testLogger())
		report := agg.CheckAll(ctx, []string{"vitamin d", "calcium"})

		require.Len(t, report.Interactions, 1)
		assert.Equal(t, domain.RiskInfo, report.OverallRisk)
		assert.Contains(t, report.Recommendations[0], "Beneficial")
	})

	t.Run("ValidateSafety_Matches_CheckAll", func(t *testing.T) {
		agg := NewInteractionAggregator([]domain.InteractionSource{local}, testLogger())
		checked := agg.CheckAll(ctx, []string{"warfarin", "aspirin"})
		validated := agg.ValidateSafety(ctx, []string{"warfarin", "aspirin"})

		assert.Equal(t, checked.OverallRisk, validated.OverallRisk)
		assert.Equal(t, checked.SeveritySummary, validated.SeveritySummary)
	})
}

func TestPrescriptionAnalyzer_AnalyzePrescription(t *testing.T) {
	ctx := context.Background()
	index := buildTestIndex(t)
	rule := NewRuleBasedExtractor(index, testLogger())
	extractor := NewHybridExtractor(nil, rule, testLogger())
	aggregator := NewInteractionAggregator([]domain.InteractionSource{NewLocalInteractionSource()}, testLogger())
	analyzer := NewPrescriptionAnalyzer(extractor, aggregator, testLogger())

	t.Run("Interacting_Prescription", func(t *testing.T) {
		analysis := analyzer.AnalyzePrescription(ctx, "Warfarin 5 mg once daily and Aspirin 81 mg once daily")

		require.Len(t, analysis.Entities, 2)
		require.NotNil(t, analysis.SafetyReport)
		assert.Equal(t, domain.RiskHigh, analysis.SafetyReport.OverallRisk)
	})

	t.Run("Empty_Text", func(t *testing.T) {
		analysis := analyzer.AnalyzePrescription(ctx, "")

		assert.Empty(t, analysis.Entities)
		assert.Equal(t, domain.RiskNone, analysis.SafetyReport.OverallRisk)
	})

	t.Run("Single_Medicine_No_Pairs", func(t *testing.T) {
		analysis := analyzer.AnalyzePrescription(ctx, "Paracetamol 500 mg as needed")

		require.Len(t, analysis.Entities, 1)
		assert.Equal(t, domain.RiskNone, analysis.SafetyReport.OverallRisk)
	})
}
