package handlers

import (
	"net/http"
	"strings"

	"lookbook/internal/domain"
	"lookbook/internal/imagegen"
	"lookbook/internal/imageref"
)

type generateClothingRequest struct {
	Characteristics imagegen.Garment `json:"characteristics"`
}

func (a *App) GenerateClothing(w http.ResponseWriter, r *http.Request) {
	var req generateClothingRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	if req.Characteristics.Empty() {
		a.error(w, r, domain.BadRequest("characteristics are required"))
		return
	}
	url, err := a.generateOne(r.Context(), imagegen.GarmentPrompt(req.Characteristics))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"imageUrl": url})
}

func (a *App) GenerateModel(w http.ResponseWriter, r *http.Request) {
	var req imagegen.ModelTraits
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	url, err := a.generateOne(r.Context(), imagegen.ModelPrompt(req))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"modelImage": url})
}

type extractClothingRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (a *App) ExtractClothing(w http.ResponseWriter, r *http.Request) {
	var req extractClothingRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		a.error(w, r, domain.BadRequest("imageUrl is required"))
		return
	}
	url, err := a.generateOne(r.Context(), imagegen.ExtractionPrompt(), imageref.Parse(req.ImageURL))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"imageUrl": url})
}

type mergeImagesRequest struct {
	ModelImage    string                  `json:"modelImage"`
	ProductImage  string                  `json:"productImage"`
	Prompt        string                  `json:"prompt"`
	SceneSettings *imagegen.SceneSettings `json:"sceneSettings"`
}

func (a *App) MergeImages(w http.ResponseWriter, r *http.Request) {
	var req mergeImagesRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	if strings.TrimSpace(req.ModelImage) == "" || strings.TrimSpace(req.ProductImage) == "" {
		a.error(w, r, domain.BadRequest("modelImage and productImage are required"))
		return
	}
	url, err := a.generateOne(r.Context(),
		imagegen.MergePrompt(req.Prompt, req.SceneSettings),
		imageref.Parse(req.ModelImage),
		imageref.Parse(req.ProductImage),
	)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"mergedImage": url})
}
