// Package prompt writes marketplace listing copy (title, description, tags)
// for a garment.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ListingRequest struct {
	ClothingName  string `json:"clothingName"`
	ClothingType  string `json:"clothingType"`
	ClothingStyle string `json:"clothingStyle"`
	ClothingColor string `json:"clothingColor"`
}

type Listing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Provider    string   `json:"-"`
}

// Copywriter produces a listing. Rate-limit and payment-required upstream
// answers surface as *domain.ProviderError; other failures may be served
// by a fallback.
type Copywriter interface {
	Write(ctx context.Context, req ListingRequest) (*Listing, error)
}

// StaticCopywriter renders a fixed Portuguese template. It never fails.
type StaticCopywriter struct{}

func NewStaticCopywriter() *StaticCopywriter {
	return &StaticCopywriter{}
}

func (s *StaticCopywriter) Write(_ context.Context, req ListingRequest) (*Listing, error) {
	c := cases.Title(language.BrazilianPortuguese)
	name := coalesce(req.ClothingName, req.ClothingType, "Peça")
	title := c.String(strings.Join(nonEmpty(name, req.ClothingColor, req.ClothingStyle), " "))

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%s", title)
	if req.ClothingType != "" {
		fmt.Fprintf(sb, " é uma peça do tipo %s", strings.ToLower(req.ClothingType))
	}
	if req.ClothingStyle != "" {
		fmt.Fprintf(sb, " com estilo %s", strings.ToLower(req.ClothingStyle))
	}
	sb.WriteString(". Confortável, versátil e pensada para compor looks do dia a dia com personalidade.")

	return &Listing{
		Title:       title,
		Description: sb.String(),
		Tags:        normalizeKeywords([]string{req.ClothingType, req.ClothingStyle, req.ClothingColor, "moda"}, "moda"),
		Provider:    staticProviderName,
	}, nil
}

var _ Copywriter = (*StaticCopywriter)(nil)
