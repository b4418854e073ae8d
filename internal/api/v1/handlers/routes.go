package handlers

import (
	"net/http"

	v1mware "github.com/deepgram/parley/internal/api/v1/middleware"
	"github.com/deepgram/parley/internal/config"
	"github.com/deepgram/parley/internal/services"
	"github.com/gorilla/mux"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(v1mware.RequireSession(services.GetSessionService()))

	chatService := services.GetChatService()
	docService := services.GetDocQAService()
	renderer := services.GetMarkdownService()
	maxUpload := config.GetMaxUploadBytes()

	v1chatRouter := v1.PathPrefix("/chat").Subrouter()
	v1chatRouter.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		HandleChatSubmit(chatService, renderer, w, r)
	}).Methods("POST")
	v1chatRouter.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		HandleChatTranscript(chatService, renderer, w, r)
	}).Methods("GET")

	v1docRouter := v1.PathPrefix("/document").Subrouter()
	v1docRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		HandleDocumentStatus(docService, w, r)
	}).Methods("GET")
	v1docRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		HandleDocumentUpload(docService, maxUpload, w, r)
	}).Methods("POST")
	v1docRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		HandleDocumentClear(docService, w, r)
	}).Methods("DELETE")
	v1docRouter.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		HandleDocumentSubmit(docService, renderer, w, r)
	}).Methods("POST")
	v1docRouter.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		HandleDocumentTranscript(docService, renderer, w, r)
	}).Methods("GET")

	v1.HandleFunc("/markdown", func(w http.ResponseWriter, r *http.Request) {
		HandleRenderMarkdown(renderer, w, r)
	}).Methods("POST")
}
