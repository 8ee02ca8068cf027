package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/inference/port"
)

// ---------------------------------------------------------------------------
// Translate
// ---------------------------------------------------------------------------

func TestTranslate_FlatEnvelope(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translation": "Bonjour",
			"confidence":  0.91,
			"model":       "nmt-medium-2",
		})
	}))
	defer srv.Close()

	p := New(srv.URL, "secret", map[domain.ModelTier]string{domain.TierMedium: "nmt-medium-2"})
	res, err := p.Translate(context.Background(), port.Request{
		Text:           "Hello",
		SourceLanguage: "en",
		TargetLanguage: "fr",
		Tier:           domain.TierMedium,
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if res.Text != "Bonjour" {
		t.Errorf("Text = %q, want Bonjour", res.Text)
	}
	if res.Confidence == nil || *res.Confidence != 0.91 {
		t.Errorf("Confidence = %v, want 0.91", res.Confidence)
	}
	if res.ModelUsed != "nmt-medium-2" {
		t.Errorf("ModelUsed = %q, want nmt-medium-2", res.ModelUsed)
	}
	if gotReq["model"] != "nmt-medium-2" {
		t.Errorf("request model = %v, want tier-mapped nmt-medium-2", gotReq["model"])
	}
}

func TestTranslate_WrappedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"translated_text": "Hola", "model": "nmt-basic-1"},
		})
	}))
	defer srv.Close()

	p := New(srv.URL, "", nil)
	res, err := p.Translate(context.Background(), port.Request{
		Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Tier: domain.TierBasic,
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if res.Text != "Hola" {
		t.Errorf("Text = %q, want Hola", res.Text)
	}
	if res.ModelUsed != "nmt-basic-1" {
		t.Errorf("ModelUsed = %q, want nmt-basic-1", res.ModelUsed)
	}
}

func TestTranslate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, "", nil)
	_, err := p.Translate(context.Background(), port.Request{
		Text: "Hello", SourceLanguage: "en", TargetLanguage: "fr", Tier: domain.TierBasic,
	})
	if err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}

func TestTranslate_EmptyTranslationIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"confidence": 0.5})
	}))
	defer srv.Close()

	p := New(srv.URL, "", nil)
	_, err := p.Translate(context.Background(), port.Request{
		Text: "Hello", SourceLanguage: "en", TargetLanguage: "fr", Tier: domain.TierBasic,
	})
	if err == nil {
		t.Fatal("expected an error when no translation field is present")
	}
}

// ---------------------------------------------------------------------------
// model mapping
// ---------------------------------------------------------------------------

func TestModel_FallsBackToTierName(t *testing.T) {
	p := New("http://unused", "", map[domain.ModelTier]string{domain.TierPremium: "big-model"})
	if got := p.model(domain.TierPremium); got != "big-model" {
		t.Errorf("got %q, want big-model", got)
	}
	if got := p.model(domain.TierBasic); got != "basic" {
		t.Errorf("got %q, want basic", got)
	}
}
