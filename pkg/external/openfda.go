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

// OpenFDAClient looks up drug-interaction narratives in the FDA drug-label
// API. Responses are cached for seven days; the label corpus changes rarely
// and the provider's usage policy asks for restraint.
type OpenFDAClient struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	cache      *QueryCache
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewOpenFDAClient creates an OpenFDA drug-label client.
func NewOpenFDAClient(config domain.ProviderConfig, cache *QueryCache, logger *logrus.Logger) *OpenFDAClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.fda.gov/drug/label.json"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 4 // OpenFDA allows 240/minute
	}

	return &OpenFDAClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		cache:     cache,
		breaker:   newProviderBreaker("OpenFDA", logger),
		logger:    logger,
	}
}

// openFDALabelResponse represents the JSON response from the drug-label API.
type openFDALabelResponse struct {
	Results []struct {
		DrugInteractions []string `json:"drug_interactions"`
		Warnings         []string `json:"warnings"`
		OpenFDA          struct {
			GenericName []string `json:"generic_name"`
			BrandName   []string `json:"brand_name"`
		} `json:"openfda"`
	} `json:"results"`
}

// SourceType identifies this client for source attribution.
func (c *OpenFDAClient) SourceType() domain.InteractionSourceType {
	return domain.SourceOpenFDA
}

// LookupSingle returns every interaction narrative from the drug's FDA
// label. Provider failures are absorbed: the error is logged and an empty
// list returned so one outage never blocks the aggregate result.
func (c *OpenFDAClient) LookupSingle(ctx context.Context, drug string) ([]domain.InteractionRecord, error) {
	if cached, ok := c.cache.Get(ctx, drug); ok {
		return cached, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchLabel(ctx, drug)
	})
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"provider": "OpenFDA",
			"drug":     drug,
		}).Warn("Provider lookup failed, continuing without its records")
		return nil, nil
	}

	records := result.([]domain.InteractionRecord)
	c.cache.Set(ctx, drug, records)
	return records, nil
}

// LookupPair returns the interaction record for an unordered pair, built
// from whichever drug's label mentions the other. Nil means the labels do
// not cross-reference the pair.
func (c *OpenFDAClient) LookupPair(ctx context.Context, drugA, drugB string) (*domain.InteractionRecord, error) {
	recordsA, _ := c.LookupSingle(ctx, drugA)
	for _, rec := range recordsA {
		if mentions(rec.Description, drugB) {
			paired := rec
			paired.DrugB = drugB
			return &paired, nil
		}
	}

	recordsB, _ := c.LookupSingle(ctx, drugB)
	for _, rec := range recordsB {
		if mentions(rec.Description, drugA) {
			paired := rec
			paired.DrugB = drugA
			return &paired, nil
		}
	}

	return nil, nil
}

// fetchLabel performs the network call and maps the label narrative into
// typed records. Missing severity defaults to INFO at this boundary.
func (c *OpenFDAClient) fetchLabel(ctx context.Context, drug string) ([]domain.InteractionRecord, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	params := url.Values{
		"search": {fmt.Sprintf("openfda.generic_name:%q", drug)},
		"limit":  {"1"},
	}
	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

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

	// The label API answers 404 for drugs with no published label; that is
	// an empty result, not a provider failure.
	if resp.StatusCode == http.StatusNotFound {
		return []domain.InteractionRecord{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenFDA returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var labelResp openFDALabelResponse
	if err := json.Unmarshal(body, &labelResp); err != nil {
		return nil, fmt.Errorf("failed to parse label response: %w", err)
	}

	if len(labelResp.Results) == 0 {
		return []domain.InteractionRecord{}, nil
	}

	var records []domain.InteractionRecord
	for _, narrative := range labelResp.Results[0].DrugInteractions {
		if narrative == "" {
			continue
		}
		records = append(records, domain.InteractionRecord{
			DrugA:       drug,
			Severity:    severityFromText(narrative),
			Description: narrative,
			Source:      domain.SourceOpenFDA,
		})
	}

	return records, nil
}
