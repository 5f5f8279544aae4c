package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
)

// ModelEntity is one candidate span returned by the biomedical language
// model. Confidence is the model's own score in [0,1]; the extractor layers
// its dictionary-based heuristic on top.
type ModelEntity struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ModelClient calls the BioBERT inference service that hosts the pretrained
// biomedical representation model. The integration contract is text in,
// scored entity spans out; model weights and tokenization are owned by the
// service.
type ModelClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewModelClient creates a client for the model inference service.
func NewModelClient(config domain.ModelConfig, logger *logrus.Logger) *ModelClient {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &ModelClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

type modelAnalyzeRequest struct {
	Text string `json:"text"`
}

type modelAnalyzeResponse struct {
	Entities []ModelEntity `json:"entities"`
}

// Analyze submits text to the inference service and returns the scored
// spans. Errors propagate to the caller, which falls back to the
// deterministic extraction path.
func (c *ModelClient) Analyze(ctx context.Context, text string) ([]ModelEntity, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("model inference service not configured")
	}

	payload, err := json.Marshal(modelAnalyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var analyzeResp modelAnalyzeResponse
	if err := json.Unmarshal(body, &analyzeResp); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	return analyzeResp.Entities, nil
}
