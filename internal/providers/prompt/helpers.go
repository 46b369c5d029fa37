package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	staticProviderName  = "static"
	geminiProviderName  = "gemini"
	gatewayProviderName = "gateway"
)

type modelListingPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func buildListingPrompt(req ListingRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("Você é um especialista em copywriting para e-commerce de moda.\n")
	sb.WriteString("Crie um título e uma descrição otimizada para marketplace para o seguinte produto:\n\n")
	fmt.Fprintf(sb, "Nome: %s\nTipo: %s\nEstilo: %s\nCor: %s\n\n", req.ClothingName, req.ClothingType, req.ClothingStyle, req.ClothingColor)
	sb.WriteString("INSTRUÇÕES:\n")
	sb.WriteString("1. Título: Entre 50-80 caracteres, atrativo, com palavras-chave relevantes\n")
	sb.WriteString("2. Descrição: Entre 200-500 palavras, vendedora, com benefícios e características\n")
	sb.WriteString("3. Inclua 5-8 tags/keywords relevantes para SEO\n\n")
	sb.WriteString(`Retorne no formato JSON: {"title": string, "description": string, "tags": string[]}`)
	return sb.String()
}

// listingFromPayload decodes model text into a Listing, filling blanks from req.
func listingFromPayload(text string, req ListingRequest, provider string) (*Listing, error) {
	parsed, err := parseModelPayload[modelListingPayload](text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(parsed.Title) == "" && strings.TrimSpace(parsed.Description) == "" {
		return nil, errors.New("empty listing")
	}
	return &Listing{
		Title:       coalesce(parsed.Title, req.ClothingName),
		Description: coalesce(parsed.Description, parsed.Title),
		Tags:        normalizeKeywords(parsed.Tags, req.ClothingType),
		Provider:    provider,
	}, nil
}

func normalizeKeywords(keywords []string, fallback string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		kwLower := strings.ToLower(kw)
		if _, ok := seen[kwLower]; ok {
			continue
		}
		seen[kwLower] = struct{}{}
		result = append(result, kw)
	}
	if len(result) == 0 && strings.TrimSpace(fallback) != "" {
		result = []string{strings.TrimSpace(fallback)}
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
