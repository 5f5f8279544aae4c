package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescription-analysis-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return logger
}

func newTestCache(t *testing.T, prefix string, ttl time.Duration) *QueryCache {
	t.Helper()
	cache, err := NewQueryCache(prefix, ttl, 64, nil, testLogger())
	require.NoError(t, err)
	return cache
}

const warfarinLabel = `{
	"results": [{
		"openfda": {"generic_name": ["WARFARIN SODIUM"], "brand_name": ["COUMADIN"]},
		"drug_interactions": [
			"Concomitant use with aspirin is contraindicated due to severe bleeding risk.",
			"Monitor INR closely when combined with amiodarone."
		]
	}]
}`

func TestOpenFDAClient_LookupSingle(t *testing.T) {
	ctx := context.Background()

	t.Run("Parses_Label_Narratives", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.RawQuery, "search=")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(warfarinLabel))
		}))
		defer server.Close()

		client := NewOpenFDAClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "openfda", time.Hour), testLogger())

		records, err := client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, domain.SourceOpenFDA, records[0].Source)
		assert.Equal(t, domain.SeverityHigh, records[0].Severity)
		assert.Equal(t, domain.SeverityMedium, records[1].Severity)
	})

	t.Run("Cache_Idempotence", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(warfarinLabel))
		}))
		defer server.Close()

		client := NewOpenFDAClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "openfda", time.Hour), testLogger())

		first, err := client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		second, err := client.LookupSingle(ctx, "Warfarin")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup must be served from cache")
	})

	t.Run("Expired_Entry_Refetches", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(warfarinLabel))
		}))
		defer server.Close()

		client := NewOpenFDAClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "openfda", time.Millisecond), testLogger())

		_, err := client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		_, err = client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)

		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("Unknown_Drug_404_Is_Empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewOpenFDAClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "openfda", time.Hour), testLogger())

		records, err := client.LookupSingle(ctx, "unobtainium")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Provider_Failure_Absorbed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewOpenFDAClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "openfda", time.Hour), testLogger())

		records, err := client.LookupSingle(ctx, "warfarin")
		assert.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestOpenFDAClient_LookupPair(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(warfarinLabel))
	}))
	defer server.Close()

	client := NewOpenFDAClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "openfda", time.Hour), testLogger())

	t.Run("Label_Mentions_Partner", func(t *testing.T) {
		rec, err := client.LookupPair(ctx, "warfarin", "aspirin")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "aspirin", rec.DrugB)
		assert.Equal(t, domain.SeverityHigh, rec.Severity)
	})

	t.Run("No_Cross_Reference", func(t *testing.T) {
		rec, err := client.LookupPair(ctx, "warfarin", "loratadine")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestSeverityFromText(t *testing.T) {
	tests := []struct {
		text     string
		expected domain.Severity
	}{
		{"use is contraindicated", domain.SeverityHigh},
		{"may be fatal in overdose", domain.SeverityHigh},
		{"use with caution and monitor", domain.SeverityMedium},
		{"minor gastrointestinal effects", domain.SeverityLow},
		{"no clinically relevant findings", domain.SeverityInfo},
		{"", domain.SeverityInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, severityFromText(tt.text), "text: %s", tt.text)
	}
}
