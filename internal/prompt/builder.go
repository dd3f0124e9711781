// Package prompt renders the fixed system instructions and per-request user
// instructions for the two inference paths. Everything here is a pure
// function of its inputs.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/af-corp/nutrigate/internal/types"
)

// AnalysisUser renders the user instruction for the meal analysis path.
// The caller's free text is interpolated as-is; the instruction tells the
// model to estimate conservatively when information is insufficient.
func AnalysisUser(text, lang string) string {
	return fmt.Sprintf(`Idioma de saída: %s
Descrição do usuário: %s

Regras:
- Use itens separados (items[]) quando houver múltiplos alimentos.
- Preencha totals somando items.
- confidence e overall_confidence devem ser de 0 a 1.
- Se houver bebida zero/sem calorias, estime adequadamente.`, lang, text)
}

// AnalysisContent builds the user message content for analyze-meal. With an
// image attached the content becomes a two-part multimodal payload: the
// rendered text instruction plus the image as a base64 data URI.
func AnalysisContent(req *types.MealAnalysisRequest) []types.ContentPart {
	parts := []types.ContentPart{
		types.TextPart(AnalysisUser(req.Text, req.Lang)),
	}
	if req.Image != nil {
		parts = append(parts, types.ImagePart(req.Image.DataURI()))
	}
	return parts
}

// RecommendationsContent serializes the caller's history payload verbatim as
// the user message. Non-ASCII characters pass through unescaped so the model
// sees the text the caller wrote.
func RecommendationsContent(payload any) ([]types.ContentPart, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("serialize recommendations payload: %w", err)
	}
	serialized := strings.TrimSuffix(buf.String(), "\n")
	return []types.ContentPart{types.TextPart(serialized)}, nil
}
