package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/services/dispatch"
	"github.com/deepgram/parley/internal/services/docqa"
	"github.com/deepgram/parley/internal/services/ingest"
	"github.com/deepgram/parley/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// Renderer turns assistant markdown into HTML
type Renderer interface {
	Render(source string) (template.HTML, error)
}

// SubmitRequest is the body of a flow submission
type SubmitRequest struct {
	Input string `json:"input" validate:"required"`
}

// RenderedMessage is a transcript entry with assistant markdown pre-rendered
type RenderedMessage struct {
	Role    models.Role   `json:"role"`
	Content string        `json:"content"`
	HTML    template.HTML `json:"html,omitempty"`
}

// SubmitResponse is returned after a completed round trip
type SubmitResponse struct {
	Messages []RenderedMessage `json:"messages"`
	Failed   bool              `json:"failed"`
}

// TranscriptResponse lists a flow's messages in order
type TranscriptResponse struct {
	Messages []RenderedMessage `json:"messages"`
	Latest   *RenderedMessage  `json:"latest,omitempty"`
}

func renderMessages(renderer Renderer, messages []models.Message) []RenderedMessage {
	out := make([]RenderedMessage, 0, len(messages))
	for _, m := range messages {
		rm := RenderedMessage{Role: m.Role, Content: m.Content}
		if m.Role == models.RoleAssistant {
			html, err := renderer.Render(m.Content)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to render assistant message")
			}
			rm.HTML = html
		}
		out = append(out, rm)
	}
	return out
}

func decodeSubmit(w http.ResponseWriter, r *http.Request) (SubmitRequest, bool) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return req, false
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, "Input is required", http.StatusBadRequest)
		return req, false
	}

	return req, true
}

// writeFlowError maps flow errors onto HTTP statuses
func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrEmptyInput):
		httpext.JsonError(w, "Input is required", http.StatusBadRequest)
	case errors.Is(err, dispatch.ErrInFlight):
		httpext.JsonError(w, "A request is already in flight", http.StatusConflict)
	case errors.Is(err, docqa.ErrNoDocument):
		httpext.JsonError(w, "Upload a PDF first", http.StatusConflict)
	case errors.Is(err, docqa.ErrMissingFile):
		httpext.JsonError(w, "No file selected", http.StatusBadRequest)
	case errors.Is(err, docqa.ErrUploadTooLarge):
		httpext.JsonError(w, "File is too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, ingest.ErrNotPDF):
		httpext.JsonError(w, docqa.NoticeNotPDF.Message, http.StatusUnsupportedMediaType)
	case errors.Is(err, ingest.ErrExtract):
		httpext.JsonError(w, docqa.NoticeFailed.Message, http.StatusUnprocessableEntity)
	default:
		log.Error().Err(err).Msg("Flow request failed")
		httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
	}
}
