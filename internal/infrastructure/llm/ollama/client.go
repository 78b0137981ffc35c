package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/resilience"
)

const generateOperation = "ollama_generate"

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithResilience routes generate calls through exec (retries + breaker).
func (c *Client) WithResilience(exec *resilience.Executor) *Client {
	c.executor = exec
	return c
}

// Analyzer extracts shipment fields from a document surrogate with a local model.
type Analyzer struct {
	client *Client
}

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Analyze(ctx context.Context, content string, docType domain.DocumentType) (domain.AnalysisResult, error) {
	respText, err := a.client.generateJSON(ctx, buildAnalysisPrompt(content, docType))
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return parseAnalysis(respText)
}

type analysisPayload struct {
	InvoiceNumber   *string  `json:"invoiceNumber"`
	TotalAmount     *float64 `json:"totalAmount"`
	Quantity        *float64 `json:"quantity"`
	SKUs            []string `json:"skus"`
	AnalysisSummary *string  `json:"analysisSummary"`
}

// parseAnalysis tolerates missing fields; they stay absent in the result.
func parseAnalysis(raw string) (domain.AnalysisResult, error) {
	var payload analysisPayload
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("parse analysis json: %w", err)
	}

	var result domain.AnalysisResult
	if payload.InvoiceNumber != nil {
		result.InvoiceNumber = strings.TrimSpace(*payload.InvoiceNumber)
	}
	if payload.TotalAmount != nil && !math.IsNaN(*payload.TotalAmount) && !math.IsInf(*payload.TotalAmount, 0) {
		result.TotalAmount = domain.Float64(*payload.TotalAmount)
	}
	if payload.Quantity != nil && *payload.Quantity >= 0 {
		result.Quantity = domain.Int(int(math.Round(*payload.Quantity)))
	}
	if payload.AnalysisSummary != nil {
		result.AnalysisSummary = strings.TrimSpace(*payload.AnalysisSummary)
	}

	seen := make(map[string]struct{}, len(payload.SKUs))
	for _, sku := range payload.SKUs {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			continue
		}
		seen[sku] = struct{}{}
		result.SKUs = append(result.SKUs, sku)
	}

	if result.InvoiceNumber == "" && result.TotalAmount == nil && result.Quantity == nil && len(result.SKUs) == 0 && result.AnalysisSummary == "" {
		return domain.AnalysisResult{}, errors.New("analysis response has no recognizable fields")
	}
	return result, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, generateOperation, call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(generateOperation, err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
