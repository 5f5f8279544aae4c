package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/prescription-analysis-server/internal/domain"
)

// RxNormClient resolves drug names through the NLM RxNorm API and fetches
// their known interactions. RxNorm data changes rarely, so responses are
// cached for thirty days.
type RxNormClient struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	cache      *QueryCache
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewRxNormClient creates an RxNorm interaction client.
func NewRxNormClient(config domain.ProviderConfig, cache *QueryCache, logger *logrus.Logger) *RxNormClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://rxnav.nlm.nih.gov/REST"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}

	return &RxNormClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		cache:     cache,
		breaker:   newProviderBreaker("RxNorm", logger),
		logger:    logger,
	}
}

// rxNormDrugsResponse represents the name-search response.
type rxNormDrugsResponse struct {
	DrugGroup struct {
		ConceptGroup []struct {
			TTY               string `json:"tty"`
			ConceptProperties []struct {
				RxCUI string `json:"rxcui"`
				Name  string `json:"name"`
			} `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"drugGroup"`
}

// rxNormInteractionsResponse represents the interactions response.
type rxNormInteractionsResponse struct {
	InteractionTypeGroup []struct {
		InteractionType []struct {
			InteractionPair []struct {
				InteractionConcept []struct {
					MinConceptItem struct {
						RxCUI string `json:"rxcui"`
						Name  string `json:"name"`
					} `json:"minConceptItem"`
				} `json:"interactionConcept"`
				Severity    string `json:"severity"`
				Description string `json:"description"`
			} `json:"interactionPair"`
		} `json:"interactionType"`
	} `json:"interactionTypeGroup"`
}

// SourceType identifies this client for source attribution.
func (c *RxNormClient) SourceType() domain.InteractionSourceType {
	return domain.SourceRxNorm
}

// LookupSingle resolves the drug to an RxCUI and returns its interaction
// records. Provider failures are absorbed into an empty result.
func (c *RxNormClient) LookupSingle(ctx context.Context, drug string) ([]domain.InteractionRecord, error) {
	if cached, ok := c.cache.Get(ctx, drug); ok {
		return cached, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchInteractions(ctx, drug)
	})
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"provider": "RxNorm",
			"drug":     drug,
		}).Warn("Provider lookup failed, continuing without its records")
		return nil, nil
	}

	records := result.([]domain.InteractionRecord)
	c.cache.Set(ctx, drug, records)
	return records, nil
}

// LookupPair returns the first RxNorm record pairing the two drugs, or nil
// when RxNorm holds none.
func (c *RxNormClient) LookupPair(ctx context.Context, drugA, drugB string) (*domain.InteractionRecord, error) {
	records, _ := c.LookupSingle(ctx, drugA)
	for _, rec := range records {
		if mentions(rec.DrugB, drugB) || mentions(rec.Description, drugB) {
			paired := rec
			paired.DrugB = drugB
			return &paired, nil
		}
	}

	records, _ = c.LookupSingle(ctx, drugB)
	for _, rec := range records {
		if mentions(rec.DrugB, drugA) || mentions(rec.Description, drugA) {
			paired := rec
			paired.DrugA = drugB
			paired.DrugB = drugA
			return &paired, nil
		}
	}

	return nil, nil
}

// fetchInteractions performs the two-step lookup: name to RxCUI, then RxCUI
// to interaction pairs.
func (c *RxNormClient) fetchInteractions(ctx context.Context, drug string) ([]domain.InteractionRecord, error) {
	rxcui, err := c.resolveRxCUI(ctx, drug)
	if err != nil {
		return nil, err
	}
	if rxcui == "" {
		// Drug unknown to RxNorm: empty result, not a failure.
		return []domain.InteractionRecord{}, nil
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	fullURL := fmt.Sprintf("%s/rxcui/%s/interactions.json", c.baseURL, url.PathEscape(rxcui))
	body, err := c.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	var interactions rxNormInteractionsResponse
	if err := json.Unmarshal(body, &interactions); err != nil {
		return nil, fmt.Errorf("failed to parse interactions response: %w", err)
	}

	var records []domain.InteractionRecord
	for _, group := range interactions.InteractionTypeGroup {
		for _, interactionType := range group.InteractionType {
			for _, pair := range interactionType.InteractionPair {
				rec := domain.InteractionRecord{
					DrugA:       drug,
					Severity:    domain.ParseSeverity(pair.Severity),
					Description: pair.Description,
					Source:      domain.SourceRxNorm,
				}
				// The second interaction concept names the partner drug.
				if len(pair.InteractionConcept) > 1 {
					rec.DrugB = pair.InteractionConcept[1].MinConceptItem.Name
				}
				records = append(records, rec)
			}
		}
	}

	return records, nil
}

// resolveRxCUI maps a drug name to its RxNorm concept identifier,
// preferring the ingredient concept when present.
func (c *RxNormClient) resolveRxCUI(ctx context.Context, drug string) (string, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	params := url.Values{"name": {drug}}
	fullURL := fmt.Sprintf("%s/drugs.json?%s", c.baseURL, params.Encode())
	body, err := c.get(ctx, fullURL)
	if err != nil {
		return "", err
	}

	var drugs rxNormDrugsResponse
	if err := json.Unmarshal(body, &drugs); err != nil {
		return "", fmt.Errorf("failed to parse drugs response: %w", err)
	}

	// Prefer the ingredient (IN) concept.
	for _, group := range drugs.DrugGroup.ConceptGroup {
		if group.TTY == "IN" && len(group.ConceptProperties) > 0 {
			return group.ConceptProperties[0].RxCUI, nil
		}
	}
	for _, group := range drugs.DrugGroup.ConceptGroup {
		if len(group.ConceptProperties) > 0 {
			return group.ConceptProperties[0].RxCUI, nil
		}
	}

	return "", nil
}

func (c *RxNormClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RxNorm returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
