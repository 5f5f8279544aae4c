package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/catalog"
	"github.com/prescription-analysis-server/internal/domain"
)

// maxAlternatives caps how many candidates any strategy may return.
const maxAlternatives = 5

// minSignificantWordLength filters indication words used for similarity
// matching; shorter words are connectives, not therapeutic terms.
const minSignificantWordLength = 4

var indicationStopwords = map[string]bool{
	"with": true, "mild": true, "type": true, "used": true,
	"this": true, "that": true, "from": true, "other": true,
}

// AlternativeResolverService finds replacement candidates for a medicine
// through three strategies in strict priority order, stopping at the first
// non-empty result: direct reference-data alternatives, category or
// indication similarity, then a static fallback table.
type AlternativeResolverService struct {
	index  *catalog.Index
	logger *logrus.Logger
}

// NewAlternativeResolverService creates the resolver over a built reference
// index.
func NewAlternativeResolverService(index *catalog.Index, logger *logrus.Logger) *AlternativeResolverService {
	return &AlternativeResolverService{index: index, logger: logger}
}

// Resolve returns alternative candidates for the named medicine. Unknown
// names return domain.ErrMedicineNotFound; a known medicine with no
// resolvable alternatives returns an empty list, which is a distinct
// outcome.
func (r *AlternativeResolverService) Resolve(name string) ([]domain.AlternativeCandidate, error) {
	record, err := r.index.Lookup(name)
	if err != nil {
		return nil, err
	}

	if candidates := r.directAlternatives(record); len(candidates) > 0 {
		return candidates, nil
	}
	if candidates := r.similarAlternatives(record); len(candidates) > 0 {
		return candidates, nil
	}
	candidates := staticFallback(record.Name)

	r.logger.WithFields(logrus.Fields{
		"medicine":   record.Name,
		"candidates": len(candidates),
		"strategy":   "static_fallback",
	}).Debug("Alternative resolution fell through to static table")

	return candidates, nil
}

// directAlternatives resolves the record's own alternatives list against the
// index, preserving the list's order.
func (r *AlternativeResolverService) directAlternatives(record *domain.MedicineRecord) []domain.AlternativeCandidate {
	var candidates []domain.AlternativeCandidate
	for _, altName := range record.KnownAlternatives {
		alt, err := r.index.Lookup(altName)
		if err != nil {
			continue
		}
		candidates = append(candidates, domain.AlternativeCandidate{
			Name:        alt.Name,
			GenericName: alt.GenericName,
			Indication:  alt.Indications,
			Category:    alt.Category,
			Reason:      "direct alternative from reference data",
		})
		if len(candidates) == maxAlternatives {
			break
		}
	}
	return candidates
}

// similarAlternatives scans the whole catalog for records sharing the
// source's category or a significant indication word.
func (r *AlternativeResolverService) similarAlternatives(record *domain.MedicineRecord) []domain.AlternativeCandidate {
	sourceWords := significantWords(record.Indications)

	var candidates []domain.AlternativeCandidate
	for _, other := range r.index.Records() {
		if domain.NormalizeName(other.Name) == domain.NormalizeName(record.Name) {
			continue
		}

		var reason string
		switch {
		case record.Category != "" && strings.EqualFold(other.Category, record.Category):
			reason = fmt.Sprintf("same category: %s", record.Category)
		case sharesWord(sourceWords, other.Indications):
			reason = "similar therapeutic indication"
		default:
			continue
		}

		candidates = append(candidates, domain.AlternativeCandidate{
			Name:        other.Name,
			GenericName: other.GenericName,
			Indication:  other.Indications,
			Category:    other.Category,
			Reason:      reason,
		})
		if len(candidates) == maxAlternatives {
			break
		}
	}
	return candidates
}

// significantWords extracts the indication words worth matching on.
func significantWords(indication string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(indication)) {
		word = strings.Trim(word, ",.;:()")
		if len(word) < minSignificantWordLength || indicationStopwords[word] {
			continue
		}
		words[word] = true
	}
	return words
}

func sharesWord(sourceWords map[string]bool, indication string) bool {
	if len(sourceWords) == 0 {
		return false
	}
	for _, word := range strings.Fields(strings.ToLower(indication)) {
		word = strings.Trim(word, ",.;:()")
		if sourceWords[word] {
			return true
		}
	}
	return false
}

// staticFallback maps well-known medicine-name substrings to fixed
// candidate lists so common drugs never come back empty when reference data
// is sparse.
func staticFallback(name string) []domain.AlternativeCandidate {
	lower := domain.NormalizeName(name)
	switch {
	case strings.Contains(lower, "aspirin") || strings.Contains(lower, "ibuprofen"):
		return []domain.AlternativeCandidate{
			{Name: "Paracetamol", GenericName: "Acetaminophen", Indication: "Pain relief, fever", Category: "Analgesic", Reason: "alternative pain reliever"},
			{Name: "Naproxen", GenericName: "Naproxen", Indication: "Pain relief, inflammation", Category: "NSAID", Reason: "alternative NSAID"},
			{Name: "Celecoxib", GenericName: "Celecoxib", Indication: "Pain relief, arthritis", Category: "NSAID", Reason: "COX-2 selective NSAID"},
		}
	case strings.Contains(lower, "metformin"):
		return []domain.AlternativeCandidate{
			{Name: "Glipizide", GenericName: "Glipizide", Indication: "Type 2 diabetes", Category: "Sulfonylurea", Reason: "alternative diabetes medication"},
			{Name: "Sitagliptin", GenericName: "Sitagliptin", Indication: "Type 2 diabetes", Category: "DPP-4 inhibitor", Reason: "alternative diabetes medication"},
		}
	default:
		return nil
	}
}
