package external

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/prescription-analysis-server/internal/domain"
)

// newProviderBreaker builds the circuit breaker wrapped around one
// provider's network calls. The breaker opens after five consecutive
// failures so a dead provider stops consuming its rate budget; state
// changes are logged for operators.
func newProviderBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// severityFromText infers an interaction severity from free-text provider
// content. Label narratives carry no structured severity, so explicit risk
// language is keyword-matched and everything else defaults to INFO.
func severityFromText(text string) domain.Severity {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "contraindicated"),
		strings.Contains(lower, "life-threatening"),
		strings.Contains(lower, "severe"),
		strings.Contains(lower, "fatal"):
		return domain.SeverityHigh
	case strings.Contains(lower, "caution"),
		strings.Contains(lower, "monitor"),
		strings.Contains(lower, "moderate"):
		return domain.SeverityMedium
	case strings.Contains(lower, "minor"),
		strings.Contains(lower, "mild"):
		return domain.SeverityLow
	default:
		return domain.SeverityInfo
	}
}

// mentions reports whether text contains the drug name, case-insensitively.
func mentions(text, drug string) bool {
	return strings.Contains(strings.ToLower(text), domain.NormalizeName(drug))
}
