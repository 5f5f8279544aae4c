package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescription-analysis-server/internal/domain"
)

const warfarinDrugs = `{
	"drugGroup": {
		"conceptGroup": [
			{"tty": "SBD", "conceptProperties": [{"rxcui": "855332", "name": "warfarin sodium 5 MG Oral Tablet"}]},
			{"tty": "IN", "conceptProperties": [{"rxcui": "11289", "name": "warfarin"}]}
		]
	}
}`

const warfarinInteractions = `{
	"interactionTypeGroup": [{
		"interactionType": [{
			"interactionPair": [
				{
					"interactionConcept": [
						{"minConceptItem": {"rxcui": "11289", "name": "warfarin"}},
						{"minConceptItem": {"rxcui": "1191", "name": "aspirin"}}
					],
					"severity": "high",
					"description": "Increased risk of bleeding"
				},
				{
					"interactionConcept": [
						{"minConceptItem": {"rxcui": "11289", "name": "warfarin"}},
						{"minConceptItem": {"rxcui": "703", "name": "amiodarone"}}
					],
					"severity": "N/A",
					"description": "May increase anticoagulant effect"
				}
			]
		}]
	}]
}`

func newRxNormTestServer(calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/drugs.json"):
			w.Write([]byte(warfarinDrugs))
		case strings.Contains(r.URL.Path, "/interactions.json"):
			w.Write([]byte(warfarinInteractions))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRxNormClient_LookupSingle(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves_And_Parses_Interactions", func(t *testing.T) {
		server := newRxNormTestServer(nil)
		defer server.Close()

		client := NewRxNormClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "rxnorm", time.Hour), testLogger())

		records, err := client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, domain.SourceRxNorm, records[0].Source)
		assert.Equal(t, "aspirin", records[0].DrugB)
		assert.Equal(t, domain.SeverityHigh, records[0].Severity)
		// Providers without explicit severity default to INFO.
		assert.Equal(t, domain.SeverityInfo, records[1].Severity)
	})

	t.Run("Ingredient_Concept_Preferred", func(t *testing.T) {
		var resolvedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if strings.HasPrefix(r.URL.Path, "/drugs.json") {
				w.Write([]byte(warfarinDrugs))
				return
			}
			resolvedPath = r.URL.Path
			w.Write([]byte(`{"interactionTypeGroup": []}`))
		}))
		defer server.Close()

		client := NewRxNormClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "rxnorm", time.Hour), testLogger())

		_, err := client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		assert.Contains(t, resolvedPath, "/rxcui/11289/")
	})

	t.Run("Cache_Idempotence", func(t *testing.T) {
		var calls int32
		server := newRxNormTestServer(&calls)
		defer server.Close()

		client := NewRxNormClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "rxnorm", time.Hour), testLogger())

		_, err := client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)
		callsAfterFirst := atomic.LoadInt32(&calls)

		_, err = client.LookupSingle(ctx, "warfarin")
		require.NoError(t, err)

		assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&calls), "second lookup must not reach the network")
	})

	t.Run("Unknown_Drug_Is_Empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"drugGroup": {}}`))
		}))
		defer server.Close()

		client := NewRxNormClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "rxnorm", time.Hour), testLogger())

		records, err := client.LookupSingle(ctx, "unobtainium")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Provider_Failure_Absorbed", func(t *testing.T) {
		client := NewRxNormClient(domain.ProviderConfig{BaseURL: "http://127.0.0.1:1", RateLimit: 1000}, newTestCache(t, "rxnorm", time.Hour), testLogger())

		records, err := client.LookupSingle(ctx, "warfarin")
		assert.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestRxNormClient_LookupPair(t *testing.T) {
	ctx := context.Background()
	server := newRxNormTestServer(nil)
	defer server.Close()

	client := NewRxNormClient(domain.ProviderConfig{BaseURL: server.URL, RateLimit: 1000}, newTestCache(t, "rxnorm", time.Hour), testLogger())

	t.Run("Known_Pair", func(t *testing.T) {
		rec, err := client.LookupPair(ctx, "warfarin", "aspirin")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, domain.SeverityHigh, rec.Severity)
	})

	t.Run("Unknown_Pair", func(t *testing.T) {
		rec, err := client.LookupPair(ctx, "warfarin", "loratadine")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestQueryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Set_Then_Get", func(t *testing.T) {
		cache := newTestCache(t, "test", time.Hour)
		records := []domain.InteractionRecord{{DrugA: "a", DrugB: "b", Severity: domain.SeverityLow}}

		cache.Set(ctx, "warfarin", records)
		got, ok := cache.Get(ctx, "warfarin")
		require.True(t, ok)
		assert.Equal(t, records, got)
	})

	t.Run("Miss_On_Unknown_Key", func(t *testing.T) {
		cache := newTestCache(t, "test", time.Hour)
		_, ok := cache.Get(ctx, "nothing")
		assert.False(t, ok)
	})

	t.Run("Expiry_Evicts", func(t *testing.T) {
		cache := newTestCache(t, "test", time.Millisecond)
		cache.Set(ctx, "warfarin", []domain.InteractionRecord{{DrugA: "a", DrugB: "b"}})

		time.Sleep(5 * time.Millisecond)
		_, ok := cache.Get(ctx, "warfarin")
		assert.False(t, ok)
	})

	t.Run("Empty_Result_Is_Cached", func(t *testing.T) {
		cache := newTestCache(t, "test", time.Hour)
		cache.Set(ctx, "unobtainium", []domain.InteractionRecord{})

		got, ok := cache.Get(ctx, "unobtainium")
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("Keys_Normalized", func(t *testing.T) {
		cache := newTestCache(t, "test", time.Hour)
		cache.Set(ctx, "  Warfarin  Sodium ", []domain.InteractionRecord{{DrugA: "a", DrugB: "b"}})

		_, ok := cache.Get(ctx, "warfarin sodium")
		assert.True(t, ok)
	})
}
