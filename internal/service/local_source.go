package service

import (
	"context"

	"github.com/prescription-analysis-server/internal/domain"
)

// LocalInteractionSource serves the curated in-process interaction table.
// The table is pharmacist-reviewed and ships with the binary, so lookups
// never fail and every record carries an explicit severity.
type LocalInteractionSource struct {
	byPair map[string]domain.InteractionRecord
	byDrug map[string][]domain.InteractionRecord
}

// NewLocalInteractionSource builds the lookup maps over the curated table.
func NewLocalInteractionSource() *LocalInteractionSource {
	src := &LocalInteractionSource{
		byPair: make(map[string]domain.InteractionRecord, len(curatedInteractions)),
		byDrug: make(map[string][]domain.InteractionRecord),
	}
	for _, rec := range curatedInteractions {
		rec.Source = domain.SourceLocal
		src.byPair[rec.PairKey()] = rec
		a := domain.NormalizeName(rec.DrugA)
		b := domain.NormalizeName(rec.DrugB)
		src.byDrug[a] = append(src.byDrug[a], rec)
		src.byDrug[b] = append(src.byDrug[b], rec)
	}
	return src
}

// SourceType identifies this source for attribution.
func (s *LocalInteractionSource) SourceType() domain.InteractionSourceType {
	return domain.SourceLocal
}

// LookupPair returns the curated record for an unordered drug pair, or nil
// when the table holds none.
func (s *LocalInteractionSource) LookupPair(ctx context.Context, drugA, drugB string) (*domain.InteractionRecord, error) {
	probe := domain.InteractionRecord{DrugA: drugA, DrugB: drugB}
	if rec, ok := s.byPair[probe.PairKey()]; ok {
		return &rec, nil
	}
	return nil, nil
}

// LookupSingle returns every curated record involving the drug.
func (s *LocalInteractionSource) LookupSingle(ctx context.Context, drug string) ([]domain.InteractionRecord, error) {
	records := s.byDrug[domain.NormalizeName(drug)]
	out := make([]domain.InteractionRecord, len(records))
	copy(out, records)
	return out, nil
}

// curatedInteractions is the shipped interaction table, grouped by clinical
// interaction class.
var curatedInteractions = []domain.InteractionRecord{
	// Warfarin with NSAIDs: bleeding risk.
	{
		DrugA: "warfarin", DrugB: "aspirin", Severity: domain.SeverityHigh,
		Description:    "Increased risk of bleeding and bruising",
		Mechanism:      "Both drugs affect blood clotting mechanisms",
		Recommendation: "Avoid combination. Use alternative pain relief. Monitor INR closely if necessary.",
		Alternatives:   []string{"Acetaminophen", "Topical pain relievers"},
		Monitoring:     "INR levels, bleeding signs",
	},
	{
		DrugA: "warfarin", DrugB: "ibuprofen", Severity: domain.SeverityHigh,
		Description:    "Increased risk of bleeding and bruising",
		Mechanism:      "Both drugs affect blood clotting mechanisms",
		Recommendation: "Avoid combination. Use alternative pain relief. Monitor INR closely if necessary.",
		Alternatives:   []string{"Acetaminophen", "Topical pain relievers"},
		Monitoring:     "INR levels, bleeding signs",
	},
	{
		DrugA: "warfarin", DrugB: "naproxen", Severity: domain.SeverityHigh,
		Description:    "Increased risk of bleeding and bruising",
		Mechanism:      "Both drugs affect blood clotting mechanisms",
		Recommendation: "Avoid combination. Use alternative pain relief. Monitor INR closely if necessary.",
		Alternatives:   []string{"Acetaminophen", "Topical pain relievers"},
		Monitoring:     "INR levels, bleeding signs",
	},
	// ACE inhibitors with potassium: hyperkalemia.
	{
		DrugA: "lisinopril", DrugB: "potassium", Severity: domain.SeverityHigh,
		Description:    "Risk of dangerously high potassium levels",
		Mechanism:      "ACE inhibitors reduce potassium excretion",
		Recommendation: "Monitor potassium levels. Avoid potassium supplements. Limit high-potassium foods.",
		Alternatives:   []string{"ARB medications", "Calcium channel blockers"},
		Monitoring:     "Serum potassium levels, EKG",
	},
	{
		DrugA: "enalapril", DrugB: "potassium", Severity: domain.SeverityHigh,
		Description:    "Risk of dangerously high potassium levels",
		Mechanism:      "ACE inhibitors reduce potassium excretion",
		Recommendation: "Monitor potassium levels. Avoid potassium supplements. Limit high-potassium foods.",
		Alternatives:   []string{"ARB medications", "Calcium channel blockers"},
		Monitoring:     "Serum potassium levels, EKG",
	},
	// Digoxin with diuretics: toxicity.
	{
		DrugA: "digoxin", DrugB: "furosemide", Severity: domain.SeverityHigh,
		Description:    "Increased risk of digoxin toxicity",
		Mechanism:      "Diuretics cause potassium loss, increasing digoxin sensitivity",
		Recommendation: "Monitor digoxin levels. Maintain normal potassium levels. Watch for toxicity signs.",
		Alternatives:   []string{"ACE inhibitors", "Beta-blockers"},
		Monitoring:     "Digoxin levels, potassium levels, EKG",
	},
	{
		DrugA: "digoxin", DrugB: "hydrochlorothiazide", Severity: domain.SeverityHigh,
		Description:    "Increased risk of digoxin toxicity",
		Mechanism:      "Diuretics cause potassium loss, increasing digoxin sensitivity",
		Recommendation: "Monitor digoxin levels. Maintain normal potassium levels. Watch for toxicity signs.",
		Alternatives:   []string{"ACE inhibitors", "Beta-blockers"},
		Monitoring:     "Digoxin levels, potassium levels, EKG",
	},
	// MAOIs with SSRIs: serotonin syndrome.
	{
		DrugA: "phenelzine", DrugB: "fluoxetine", Severity: domain.SeverityHigh,
		Description:    "Life-threatening serotonin syndrome risk",
		Mechanism:      "Both drugs increase serotonin levels",
		Recommendation: "NEVER combine. Wait 14 days between stopping MAOI and starting SSRI.",
		Alternatives:   []string{"SNRIs", "Tricyclic antidepressants"},
		Monitoring:     "Serotonin syndrome symptoms",
	},
	{
		DrugA: "tranylcypromine", DrugB: "sertraline", Severity: domain.SeverityHigh,
		Description:    "Life-threatening serotonin syndrome risk",
		Mechanism:      "Both drugs increase serotonin levels",
		Recommendation: "NEVER combine. Wait 14 days between stopping MAOI and starting SSRI.",
		Alternatives:   []string{"SNRIs", "Tricyclic antidepressants"},
		Monitoring:     "Serotonin syndrome symptoms",
	},
	// Lithium with NSAIDs: toxicity.
	{
		DrugA: "lithium", DrugB: "ibuprofen", Severity: domain.SeverityHigh,
		Description:    "Increased risk of lithium toxicity",
		Mechanism:      "NSAIDs reduce lithium excretion",
		Recommendation: "Avoid combination. Monitor lithium levels closely. Use alternative pain relief.",
		Alternatives:   []string{"Acetaminophen", "Topical pain relievers"},
		Monitoring:     "Lithium levels, toxicity symptoms",
	},
	{
		DrugA: "lithium", DrugB: "naproxen", Severity: domain.SeverityHigh,
		Description:    "Increased risk of lithium toxicity",
		Mechanism:      "NSAIDs reduce lithium excretion",
		Recommendation: "Avoid combination. Monitor lithium levels closely. Use alternative pain relief.",
		Alternatives:   []string{"Acetaminophen", "Topical pain relievers"},
		Monitoring:     "Lithium levels, toxicity symptoms",
	},
	// Statins with grapefruit: raised drug levels.
	{
		DrugA: "atorvastatin", DrugB: "grapefruit", Severity: domain.SeverityMedium,
		Description:    "Grapefruit increases statin blood levels",
		Mechanism:      "Grapefruit inhibits drug metabolism enzymes",
		Recommendation: "Limit grapefruit consumption. Monitor for muscle pain and liver function.",
		Alternatives:   []string{"Pravastatin", "Rosuvastatin"},
		Monitoring:     "Liver function tests, muscle symptoms",
	},
	{
		DrugA: "simvastatin", DrugB: "grapefruit", Severity: domain.SeverityMedium,
		Description:    "Grapefruit increases statin blood levels",
		Mechanism:      "Grapefruit inhibits drug metabolism enzymes",
		Recommendation: "Limit grapefruit consumption. Monitor for muscle pain and liver function.",
		Alternatives:   []string{"Pravastatin", "Rosuvastatin"},
		Monitoring:     "Liver function tests, muscle symptoms",
	},
	// Metformin with alcohol: lactic acidosis.
	{
		DrugA: "metformin", DrugB: "alcohol", Severity: domain.SeverityMedium,
		Description:    "Increased risk of lactic acidosis",
		Mechanism:      "Alcohol impairs lactate metabolism",
		Recommendation: "Limit alcohol consumption. Monitor for lactic acidosis symptoms.",
		Alternatives:   []string{"Sulfonylureas", "DPP-4 inhibitors"},
		Monitoring:     "Lactate levels, kidney function",
	},
	// Beta-blockers with insulin: masked hypoglycemia.
	{
		DrugA: "metoprolol", DrugB: "insulin", Severity: domain.SeverityMedium,
		Description:    "Masked hypoglycemia symptoms",
		Mechanism:      "Beta-blockers mask hypoglycemia warning signs",
		Recommendation: "Monitor blood glucose closely. Educate about hypoglycemia symptoms.",
		Alternatives:   []string{"ACE inhibitors", "Calcium channel blockers"},
		Monitoring:     "Blood glucose levels, hypoglycemia symptoms",
	},
	{
		DrugA: "atenolol", DrugB: "insulin", Severity: domain.SeverityMedium,
		Description:    "Masked hypoglycemia symptoms",
		Mechanism:      "Beta-blockers mask hypoglycemia warning signs",
		Recommendation: "Monitor blood glucose closely. Educate about hypoglycemia symptoms.",
		Alternatives:   []string{"ACE inhibitors", "Calcium channel blockers"},
		Monitoring:     "Blood glucose levels, hypoglycemia symptoms",
	},
	// Antacids with antibiotics: reduced absorption.
	{
		DrugA: "calcium carbonate", DrugB: "tetracycline", Severity: domain.SeverityLow,
		Description:    "Antacids reduce antibiotic absorption",
		Mechanism:      "Calcium binds to tetracycline in stomach",
		Recommendation: "Take antibiotic 2 hours before or after antacid. Monitor treatment response.",
		Alternatives:   []string{"H2 blockers", "PPIs"},
		Monitoring:     "Infection resolution, antibiotic levels",
	},
	{
		DrugA: "aluminum hydroxide", DrugB: "ciprofloxacin", Severity: domain.SeverityLow,
		Description:    "Antacids reduce antibiotic absorption",
		Mechanism:      "Aluminum binds to ciprofloxacin in stomach",
		Recommendation: "Take antibiotic 2 hours before or after antacid. Monitor treatment response.",
		Alternatives:   []string{"H2 blockers", "PPIs"},
		Monitoring:     "Infection resolution, antibiotic levels",
	},
	// Caffeine with stimulants.
	{
		DrugA: "caffeine", DrugB: "pseudoephedrine", Severity: domain.SeverityLow,
		Description:    "Increased nervousness and insomnia",
		Mechanism:      "Both are central nervous system stimulants",
		Recommendation: "Limit caffeine intake. Monitor for overstimulation symptoms.",
		Alternatives:   []string{"Decongestant alternatives", "Non-stimulant options"},
		Monitoring:     "Heart rate, blood pressure, sleep quality",
	},
	// Beneficial combinations kept for completeness of the report.
	{
		DrugA: "vitamin d", DrugB: "calcium", Severity: domain.SeverityInfo,
		Description:    "Vitamin D enhances calcium absorption",
		Mechanism:      "Vitamin D promotes calcium uptake in intestines",
		Recommendation: "Take together for optimal bone health. Monitor calcium levels.",
		Alternatives:   []string{"Separate timing if needed"},
		Monitoring:     "Calcium levels, bone density",
	},
	{
		DrugA: "iron", DrugB: "vitamin c", Severity: domain.SeverityInfo,
		Description:    "Vitamin C enhances iron absorption",
		Mechanism:      "Vitamin C reduces iron to more absorbable form",
		Recommendation: "Take together for optimal iron absorption. Monitor iron levels.",
		Alternatives:   []string{"Separate timing if needed"},
		Monitoring:     "Iron levels, hemoglobin",
	},
}
