package domain

import (
	"strings"
	"time"
)

// Severity represents the discrete risk ranking of a drug-pair interaction.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
	SeverityInfo   Severity = "INFO"
)

// severityPriority orders severities for worst-case aggregation.
var severityPriority = map[Severity]int{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
	SeverityInfo:   0,
}

// Priority returns the numeric rank of a severity (HIGH highest).
// Unknown severities rank below INFO.
func (s Severity) Priority() int {
	if p, ok := severityPriority[s]; ok {
		return p
	}
	return -1
}

// ParseSeverity maps free-text severity labels from external providers onto
// the canonical scale. Unrecognized or missing labels default to INFO so that
// loosely structured provider data never inflates nor hides risk silently.
func ParseSeverity(label string) Severity {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "HIGH", "MAJOR", "CONTRAINDICATED":
		return SeverityHigh
	case "MEDIUM", "MODERATE":
		return SeverityMedium
	case "LOW", "MINOR":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// RiskLevel is the overall risk of a safety report. It extends Severity with
// NONE for the case where no interaction records were found at all.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
	RiskInfo   RiskLevel = "INFO"
	RiskNone   RiskLevel = "NONE"
)

// RiskFromSeverity converts a severity into the equivalent risk level.
func RiskFromSeverity(s Severity) RiskLevel {
	switch s {
	case SeverityHigh:
		return RiskHigh
	case SeverityMedium:
		return RiskMedium
	case SeverityLow:
		return RiskLow
	default:
		return RiskInfo
	}
}

// InteractionSourceType identifies which data source produced an interaction
// record. Records from different sources for the same pair are both retained
// for source transparency.
type InteractionSourceType string

const (
	SourceLocal   InteractionSourceType = "LOCAL"
	SourceOpenFDA InteractionSourceType = "OPENFDA"
	SourceRxNorm  InteractionSourceType = "RXNORM"
)

// ExtractionSource identifies which extraction path produced an entity.
type ExtractionSource string

const (
	ExtractionModel     ExtractionSource = "MODEL"
	ExtractionRuleBased ExtractionSource = "RULE_BASED"
)

// MedicineRecord is a single catalog entry. Records are owned by the
// reference index and are immutable after the index is built.
type MedicineRecord struct {
	Name             string   `json:"name"`
	GenericName      string   `json:"generic_name"`
	BrandSynonyms    []string `json:"brand_synonyms,omitempty"`
	Category         string   `json:"category"`
	Indications      string   `json:"indications"`
	KnownSideEffects []string `json:"known_side_effects,omitempty"`
	// KnownAlternatives is ordered; the alternative resolver preserves order.
	KnownAlternatives []string `json:"known_alternatives,omitempty"`
}

// ExtractedEntity is one structured medicine mention found in prescription
// text. Created fresh per extraction call and never persisted by the core.
type ExtractedEntity struct {
	RawSpan        string           `json:"raw_span"`
	NormalizedName string           `json:"normalized_name"`
	Dosage         string           `json:"dosage,omitempty"`
	Frequency      string           `json:"frequency,omitempty"`
	Duration       string           `json:"duration,omitempty"`
	Confidence     float64          `json:"confidence"`
	Source         ExtractionSource `json:"source"`
}

// InteractionRecord describes one known interaction between an unordered
// drug pair. DrugA/DrugB ordering carries no meaning; lookups check both.
type InteractionRecord struct {
	DrugA          string                `json:"drug_a"`
	DrugB          string                `json:"drug_b"`
	Severity       Severity              `json:"severity"`
	Description    string                `json:"description"`
	Mechanism      string                `json:"mechanism,omitempty"`
	Recommendation string                `json:"recommendation,omitempty"`
	Alternatives   []string              `json:"alternatives,omitempty"`
	Monitoring     string                `json:"monitoring,omitempty"`
	Source         InteractionSourceType `json:"source"`
}

// PairKey returns an order-independent identity for the record's drug pair.
func (r *InteractionRecord) PairKey() string {
	a := strings.ToLower(strings.TrimSpace(r.DrugA))
	b := strings.ToLower(strings.TrimSpace(r.DrugB))
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// SafetyReport is the aggregated result of checking a medicine list against
// all interaction sources. It is derived per call and never cached.
type SafetyReport struct {
	Interactions    []InteractionRecord `json:"interactions"`
	SeveritySummary map[Severity]int    `json:"severity_summary"`
	OverallRisk     RiskLevel           `json:"overall_risk"`
	Recommendations []string            `json:"recommendations"`
	SourcesQueried  int                 `json:"sources_queried"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// AlternativeCandidate is one suggested replacement medicine together with
// the reason the resolver selected it.
type AlternativeCandidate struct {
	Name        string `json:"name"`
	GenericName string `json:"generic_name"`
	Indication  string `json:"indication"`
	Category    string `json:"category"`
	Reason      string `json:"reason"`
}

// PrescriptionAnalysis is the caller-facing result of analyzing one
// prescription text: the extracted entities plus their safety report.
type PrescriptionAnalysis struct {
	Entities     []ExtractedEntity `json:"entities"`
	SafetyReport *SafetyReport     `json:"safety_report"`
}

// NormalizeName canonicalizes a medicine name for lookups and cache keys.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
