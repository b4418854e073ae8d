package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/deepgram/parley/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type RenderRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type RenderResponse struct {
	HTML template.HTML `json:"html"`
}

// HandleRenderMarkdown renders arbitrary markdown with the same policy used for replies
func HandleRenderMarkdown(renderer Renderer, w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpext.JsonError(w, "Markdown is required", http.StatusBadRequest)
		return
	}

	html, err := renderer.Render(req.Markdown)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render markdown")
		httpext.JsonError(w, "Failed to render markdown", http.StatusInternalServerError)
		return
	}

	httpext.JsonResponse(w, http.StatusOK, RenderResponse{HTML: html})
}
