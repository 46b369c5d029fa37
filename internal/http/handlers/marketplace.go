package handlers

import (
	"net/http"

	"lookbook/internal/providers/prompt"
)

func (a *App) GenerateMarketplaceContent(w http.ResponseWriter, r *http.Request) {
	var req prompt.ListingRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, r, err)
		return
	}
	copywriter := a.Copywriter
	if copywriter == nil {
		copywriter = prompt.NewStaticCopywriter()
	}
	listing, err := copywriter.Write(r.Context(), req)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, listing)
}
