package handlers

import (
	"net/http"
	"strings"

	"lookbook/internal/domain"
	"lookbook/internal/imagegen"
	"lookbook/internal/imageref"
	"lookbook/internal/variation"
)

type colorVariationsRequest struct {
	CreationImage      string   `json:"creationImage"`
	ImageURL           string   `json:"imageUrl"`
	ClothingImage      string   `json:"clothingImage"`
	SelectedColors     []string `json:"selectedColors"`
	NumberOfVariations int      `json:"numberOfVariations"`
}

func (req colorVariationsRequest) base() string {
	for _, v := range []string{req.CreationImage, req.ImageURL, req.ClothingImage} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// colors returns the requested colors, falling back to the default palette
// when only a count was given.
func (req colorVariationsRequest) colors() []string {
	var out []string
	for _, c := range req.SelectedColors {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out
	}
	return imagegen.PaletteColors(req.NumberOfVariations)
}

func (a *App) GenerateColorVariations(w http.ResponseWriter, r *http.Request) {
	var req colorVariationsRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	base := req.base()
	if base == "" {
		a.error(w, r, domain.BadRequest("creationImage or imageUrl is required"))
		return
	}
	colors := req.colors()
	if len(colors) == 0 {
		a.error(w, r, domain.BadRequest("selectedColors or numberOfVariations is required"))
		return
	}

	outputs, err := a.Pipeline.Run(r.Context(), imageref.Parse(base), variation.ColorAxes(colors))
	if err != nil {
		a.error(w, r, err)
		return
	}
	variations := make([]string, 0, len(outputs))
	for _, out := range outputs {
		variations = append(variations, a.publish(r.Context(), out.Image).String())
	}
	a.json(w, http.StatusOK, map[string]any{"variations": variations})
}

type posePackRequest struct {
	OriginalImageURL string `json:"originalImageUrl"`
	CreationID       string `json:"creationId"`
}

type poseImage struct {
	Pose     string `json:"pose"`
	ImageURL string `json:"imageUrl"`
}

func (a *App) GeneratePosePack(w http.ResponseWriter, r *http.Request) {
	var req posePackRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	base := strings.TrimSpace(req.OriginalImageURL)
	if base == "" {
		id := strings.TrimSpace(req.CreationID)
		if id == "" {
			a.error(w, r, domain.BadRequest("originalImageUrl or creationId is required"))
			return
		}
		if a.Creations == nil {
			a.error(w, r, domain.ErrNotFound)
			return
		}
		creation, err := a.Creations.GetByID(r.Context(), id)
		if err != nil {
			a.error(w, r, err)
			return
		}
		base = creation.ImageURL
	}

	outputs, err := a.Pipeline.Run(r.Context(), imageref.Parse(base), variation.PoseAxes(imagegen.PosePack))
	if err != nil {
		a.error(w, r, err)
		return
	}
	poses := make([]poseImage, 0, len(outputs))
	for _, out := range outputs {
		poses = append(poses, poseImage{Pose: out.Axis, ImageURL: a.publish(r.Context(), out.Image).String()})
	}
	a.json(w, http.StatusOK, map[string]any{"poses": poses})
}
