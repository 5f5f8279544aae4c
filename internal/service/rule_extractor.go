package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/catalog"
	"github.com/prescription-analysis-server/internal/domain"
)

// minNameMatchLength filters out very short catalog keys during scanning so
// two-letter abbreviations do not match inside unrelated words.
const minNameMatchLength = 3

var (
	dosagePattern    = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(mg|mcg|g|ml|tablets?|capsules?)\b`)
	frequencyPattern = regexp.MustCompile(`(?i)\b(once daily|twice daily|three times daily|four times daily|every \d+ hours?|as needed)\b`)
	durationPattern  = regexp.MustCompile(`(?i)\bfor (\d+ (?:days?|weeks?|months?))\b`)
)

// RuleBasedExtractor is the deterministic extraction path: a word-boundary
// scan of the text against every name the reference index knows, with
// dosage, frequency, and duration pulled out by fixed patterns.
type RuleBasedExtractor struct {
	index  *catalog.Index
	logger *logrus.Logger
}

// NewRuleBasedExtractor creates the deterministic extractor over a built
// reference index.
func NewRuleBasedExtractor(index *catalog.Index, logger *logrus.Logger) *RuleBasedExtractor {
	return &RuleBasedExtractor{index: index, logger: logger}
}

// nameMatch is one catalog-name hit in the scanned text.
type nameMatch struct {
	key   string
	start int
	end   int
}

// Extract scans normalized prescription text and returns entities scored on
// the deterministic scale: name 40, dosage 30, frequency 20, duration 10,
// out of 100. Malformed or empty text yields an empty list, never an error.
func (e *RuleBasedExtractor) Extract(ctx context.Context, text string) []domain.ExtractedEntity {
	normalized := PreprocessText(text)
	if normalized == "" {
		return nil
	}
	// ASCII-only fold: strings.ToLower changes byte length for some runes,
	// which would desynchronize scan offsets from the text being sliced.
	lower := asciiLower(normalized)

	matches := e.scanNames(lower)
	if len(matches) == 0 {
		return nil
	}

	dosages := dosagePattern.FindAllString(normalized, -1)
	frequencies := frequencyPattern.FindAllString(normalized, -1)
	durations := durationPattern.FindAllStringSubmatch(normalized, -1)

	entities := make([]domain.ExtractedEntity, 0, len(matches))
	for i, m := range matches {
		record, err := e.index.Lookup(m.key)
		if err != nil {
			continue
		}

		entity := domain.ExtractedEntity{
			RawSpan:        normalized[m.start:m.end],
			NormalizedName: record.Name,
			Source:         domain.ExtractionRuleBased,
		}

		score := 40
		// Attributes pair with medicines by position order. The i-th dosage
		// belongs to the i-th medicine; the association is best-effort and
		// not semantically verified.
		if i < len(dosages) {
			entity.Dosage = strings.ToLower(dosages[i])
			score += 30
		}
		if i < len(frequencies) {
			entity.Frequency = strings.ToLower(frequencies[i])
			score += 20
		}
		if i < len(durations) {
			entity.Duration = strings.ToLower(durations[i][1])
			score += 10
		}
		entity.Confidence = float64(score) / 100.0

		entities = append(entities, entity)
	}

	e.logger.WithFields(logrus.Fields{
		"entities": len(entities),
		"path":     domain.ExtractionRuleBased,
	}).Debug("Deterministic extraction completed")

	return entities
}

// scanNames finds every non-overlapping catalog-name occurrence in the
// case-folded text. Names are tried longest-first so a brand name containing
// a generic name claims the span before the shorter key can.
func (e *RuleBasedExtractor) scanNames(lower string) []nameMatch {
	var matches []nameMatch
	claimed := make([]bool, len(lower))

	for _, name := range e.index.AllNames() {
		if len(name) < minNameMatchLength {
			continue
		}
		for offset := 0; offset < len(lower); {
			pos := strings.Index(lower[offset:], name)
			if pos < 0 {
				break
			}
			start := offset + pos
			end := start + len(name)
			offset = start + 1

			if !wordBoundary(lower, start, end) || spanClaimed(claimed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			matches = append(matches, nameMatch{key: name, start: start, end: end})
		}
	}

	sort.Slice(matches, func(a, b int) bool { return matches[a].start < matches[b].start })
	return matches
}

func spanClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// wordBoundary reports whether text[start:end] is delimited by non-word
// characters on both sides.
func wordBoundary(text string, start, end int) bool {
	if start > 0 && isWordChar(text[start-1]) {
		return false
	}
	if end < len(text) && isWordChar(text[end]) {
		return false
	}
	return true
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// asciiLower lowercases ASCII letters only, preserving the byte length of
// every rune so offsets into the result index the input identically.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
