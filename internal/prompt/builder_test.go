package prompt

import (
	"strings"
	"testing"

	"github.com/af-corp/nutrigate/internal/types"
)

func TestAnalysisUser(t *testing.T) {
	got := AnalysisUser("2 ovos e salada", "pt")

	if !strings.Contains(got, "Idioma de saída: pt") {
		t.Error("output language not interpolated")
	}
	if !strings.Contains(got, "Descrição do usuário: 2 ovos e salada") {
		t.Error("user text not interpolated")
	}
	if !strings.Contains(got, "items[]") {
		t.Error("formatting rules missing")
	}
}

func TestAnalysisContent_TextOnly(t *testing.T) {
	parts := AnalysisContent(&types.MealAnalysisRequest{Text: "2 eggs", Lang: "en"})

	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0].Type != "text" {
		t.Errorf("expected text part, got %s", parts[0].Type)
	}
	if !strings.Contains(parts[0].Text, "2 eggs") {
		t.Error("text part missing user description")
	}
}

func TestAnalysisContent_WithImage(t *testing.T) {
	req := &types.MealAnalysisRequest{
		Lang: "pt",
		Image: &types.ImageAttachment{
			ContentType: "image/png",
			Data:        []byte{0x89, 0x50, 0x4e, 0x47},
		},
	}
	parts := AnalysisContent(req)

	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[1].Type != "image_url" {
		t.Errorf("expected image_url part, got %s", parts[1].Type)
	}
	url := parts[1].ImageURL.URL
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("expected data URI with declared MIME type, got %s", url)
	}
	if !strings.HasSuffix(url, "iVBORw==") {
		t.Errorf("unexpected base64 payload: %s", url)
	}
}

func TestRecommendationsContent_VerbatimJSON(t *testing.T) {
	payload := map[string]any{
		"goal":    "manter peso & ganhar proteína",
		"history": []any{map[string]any{"calories": 1800.0}},
	}

	parts, err := RecommendationsContent(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 || parts[0].Type != "text" {
		t.Fatalf("expected single text part, got %+v", parts)
	}
	if !strings.Contains(parts[0].Text, "manter peso & ganhar proteína") {
		t.Errorf("non-ASCII or & was escaped: %s", parts[0].Text)
	}
	if strings.Contains(parts[0].Text, `\u0026`) {
		t.Error("HTML escaping must be disabled")
	}
	if strings.HasSuffix(parts[0].Text, "\n") {
		t.Error("serialized payload should not carry a trailing newline")
	}
}

func TestSystemInstructions_MandateJSONOnly(t *testing.T) {
	if !strings.Contains(SystemAnalyze, "APENAS em JSON") {
		t.Error("analyzer instruction must mandate JSON-only output")
	}
	if !strings.Contains(SystemRecommend, "APENAS em JSON") {
		t.Error("coach instruction must mandate JSON-only output")
	}
	if !strings.Contains(SystemAnalyze, "schema_version") || !strings.Contains(SystemRecommend, "schema_version") {
		t.Error("instructions must declare the response schema")
	}
}
