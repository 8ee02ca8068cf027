package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/inference/port"
)

// HTTPProvider calls a translation inference service over its REST API.
// The model used for a request is selected by tier.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Models  map[domain.ModelTier]string

	http *resty.Client
}

// New constructs a provider for the given endpoint. Unmapped tiers fall back
// to the tier name itself as the model id.
func New(baseURL, apiKey string, models map[domain.ModelTier]string) *HTTPProvider {
	c := resty.New().SetTimeout(20 * time.Second)
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Models:  models,
		http:    c,
	}
}

// NewFromEnv reads TRANSLATOR_URL, TRANSLATOR_API_KEY and the per-tier
// TRANSLATOR_MODEL_* variables.
func NewFromEnv() (*HTTPProvider, error) {
	baseURL := strings.TrimSpace(os.Getenv("TRANSLATOR_URL"))
	if baseURL == "" {
		return nil, errors.New("translator: TRANSLATOR_URL environment variable is not set")
	}
	models := map[domain.ModelTier]string{}
	for tier, env := range map[domain.ModelTier]string{
		domain.TierBasic:   "TRANSLATOR_MODEL_BASIC",
		domain.TierMedium:  "TRANSLATOR_MODEL_MEDIUM",
		domain.TierPremium: "TRANSLATOR_MODEL_PREMIUM",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			models[tier] = v
		}
	}
	return New(baseURL, os.Getenv("TRANSLATOR_API_KEY"), models), nil
}

var _ port.Provider = (*HTTPProvider)(nil)

func (p *HTTPProvider) model(tier domain.ModelTier) string {
	if m, ok := p.Models[tier]; ok && m != "" {
		return m
	}
	return string(tier)
}

func (p *HTTPProvider) Translate(ctx context.Context, req port.Request) (port.Result, error) {
	model := p.model(req.Tier)
	body := map[string]any{
		"text":            req.Text,
		"source_language": req.SourceLanguage,
		"target_language": req.TargetLanguage,
		"model":           model,
	}

	r := p.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if p.APIKey != "" {
		r.SetHeader("Authorization", "Bearer "+p.APIKey)
	}

	rr, err := r.Post(p.BaseURL + "/v1/translate")
	if err != nil {
		return port.Result{}, fmt.Errorf("translator: %w", err)
	}
	if rr.IsError() {
		return port.Result{}, fmt.Errorf("translator: %s; body: %s", rr.Status(), abbreviate(rr.String(), 500))
	}

	res, err := decodeResult(rr.Body(), model)
	if err != nil {
		return port.Result{}, err
	}
	return res, nil
}

// upstream deployments wrap the translation in a few different envelopes;
// all of them are normalized here, at the boundary, into port.Result.
type wireResult struct {
	Translation *string    `json:"translation"`
	Translated  *string    `json:"translated_text"`
	Text        *string    `json:"text"`
	Confidence  *float64   `json:"confidence"`
	Model       string     `json:"model"`
	ModelUsed   string     `json:"model_used"`
	Data        *wireInner `json:"data"`
}

type wireInner struct {
	Translation *string  `json:"translation"`
	Translated  *string  `json:"translated_text"`
	Confidence  *float64 `json:"confidence"`
	Model       string   `json:"model"`
}

func decodeResult(raw []byte, requestedModel string) (port.Result, error) {
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return port.Result{}, fmt.Errorf("translator: decode response: %w; body: %s", err, abbreviate(string(raw), 500))
	}

	text, confidence, model := pick(w)
	if text == "" {
		return port.Result{}, fmt.Errorf("translator: response carries no translation; body: %s", abbreviate(string(raw), 500))
	}
	if model == "" {
		model = requestedModel
	}
	return port.Result{Text: text, Confidence: confidence, ModelUsed: model}, nil
}

func pick(w wireResult) (text string, confidence *float64, model string) {
	if w.Data != nil {
		inner := *w.Data
		text = firstNonEmpty(inner.Translation, inner.Translated)
		return text, inner.Confidence, inner.Model
	}
	text = firstNonEmpty(w.Translation, w.Translated, w.Text)
	model = w.ModelUsed
	if model == "" {
		model = w.Model
	}
	return text, w.Confidence, model
}

func firstNonEmpty(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(*c) != "" {
			return strings.TrimSpace(*c)
		}
	}
	return ""
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
