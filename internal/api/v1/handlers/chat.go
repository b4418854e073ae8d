package handlers

import (
	"net/http"

	"github.com/deepgram/parley/internal/api/v1/middleware"
	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/services/chat"
	"github.com/deepgram/parley/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// HandleChatSubmit sends one chat message and returns the recorded exchange
func HandleChatSubmit(chatService chat.Service, renderer Renderer, w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubmit(w, r)
	if !ok {
		return
	}

	sessionID := middleware.GetSessionID(r)
	ex, err := chatService.Submit(r.Context(), sessionID, req.Input)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	log.Info().
		Str("session_id", sessionID).
		Str("client_ip", r.RemoteAddr).
		Bool("fallback", ex.Failed).
		Msg("Chat message processed")

	httpext.JsonResponse(w, http.StatusOK, SubmitResponse{
		Messages: renderMessages(renderer, ex.Messages()),
		Failed:   ex.Failed,
	})
}

// HandleChatTranscript returns the session's chat transcript and its newest reply
func HandleChatTranscript(chatService chat.Service, renderer Renderer, w http.ResponseWriter, r *http.Request) {
	messages, err := chatService.Transcript(r.Context(), middleware.GetSessionID(r))
	if err != nil {
		writeFlowError(w, err)
		return
	}

	resp := TranscriptResponse{Messages: renderMessages(renderer, messages)}
	for i := len(resp.Messages) - 1; i >= 0; i-- {
		if resp.Messages[i].Role == models.RoleAssistant {
			latest := resp.Messages[i]
			resp.Latest = &latest
			break
		}
	}

	httpext.JsonResponse(w, http.StatusOK, resp)
}
