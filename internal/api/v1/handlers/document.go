package handlers

import (
	"net/http"

	"github.com/deepgram/parley/internal/api/v1/middleware"
	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/services/docqa"
	"github.com/deepgram/parley/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// UploadResponse carries the notice to show plus the resulting document status
type UploadResponse struct {
	Notice   models.Notice `json:"notice"`
	Document docqa.Status  `json:"document"`
}

// HandleDocumentStatus reports the loaded document and whether questions are enabled
func HandleDocumentStatus(docService docqa.Service, w http.ResponseWriter, r *http.Request) {
	status, err := docService.Status(r.Context(), middleware.GetSessionID(r))
	if err != nil {
		writeFlowError(w, err)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, status)
}

// HandleDocumentUpload ingests the multipart "file" field as the session's document
func HandleDocumentUpload(docService docqa.Service, maxBytes int64, w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r)

	upload, err := docqa.UploadFromRequest(w, r, "file", maxBytes)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to read upload")
		writeFlowError(w, err)
		return
	}

	if _, err := docService.Upload(r.Context(), sessionID, upload); err != nil {
		writeFlowError(w, err)
		return
	}

	status, err := docService.Status(r.Context(), sessionID)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	httpext.JsonResponse(w, http.StatusOK, UploadResponse{Notice: docqa.NoticeLoaded, Document: status})
}

// HandleDocumentClear drops the loaded document
func HandleDocumentClear(docService docqa.Service, w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r)

	if err := docService.Clear(r.Context(), sessionID); err != nil {
		writeFlowError(w, err)
		return
	}

	HandleDocumentStatus(docService, w, r)
}

// HandleDocumentSubmit asks a question about the loaded document
func HandleDocumentSubmit(docService docqa.Service, renderer Renderer, w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubmit(w, r)
	if !ok {
		return
	}

	sessionID := middleware.GetSessionID(r)
	ex, err := docService.Submit(r.Context(), sessionID, req.Input)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	log.Info().
		Str("session_id", sessionID).
		Str("client_ip", r.RemoteAddr).
		Bool("fallback", ex.Failed).
		Msg("Document question processed")

	httpext.JsonResponse(w, http.StatusOK, SubmitResponse{
		Messages: renderMessages(renderer, ex.Messages()),
		Failed:   ex.Failed,
	})
}

// HandleDocumentTranscript returns every document-mode turn in order
func HandleDocumentTranscript(docService docqa.Service, renderer Renderer, w http.ResponseWriter, r *http.Request) {
	messages, err := docService.Transcript(r.Context(), middleware.GetSessionID(r))
	if err != nil {
		writeFlowError(w, err)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, TranscriptResponse{Messages: renderMessages(renderer, messages)})
}
