package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	v1mware "github.com/deepgram/parley/internal/api/v1/middleware"
	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/services/chat"
	"github.com/deepgram/parley/internal/services/dispatch"
	"github.com/deepgram/parley/internal/services/docqa"
	"github.com/deepgram/parley/internal/services/workspace"
	"github.com/deepgram/parley/pkg/logger"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	chatPage     = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/chat.html"))
	documentPage = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/document.html"))
)

// NoticeBusy is shown when a form is posted while the flow is still waiting on a reply
var NoticeBusy = models.Notice{Severity: models.SeverityInfo, Message: "Still waiting for the previous response"}

// Sessions is the part of the session service the UI needs
type Sessions interface {
	v1mware.SessionIssuer
	ClearSession(w http.ResponseWriter, r *http.Request) string
}

// Renderer turns markdown into sanitized HTML for templates
type Renderer interface {
	MustRender(source string) template.HTML
}

// UI serves the browser pages for both flows
type UI struct {
	chat      chat.Service
	docs      docqa.Service
	store     workspace.Store
	renderer  Renderer
	sessions  Sessions
	maxUpload int64
}

func NewUI(chatService chat.Service, docService docqa.Service, store workspace.Store, renderer Renderer, sessions Sessions, maxUpload int64) *UI {
	return &UI{
		chat:      chatService,
		docs:      docService,
		store:     store,
		renderer:  renderer,
		sessions:  sessions,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes mounts the pages on router
func (u *UI) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", u.HandleIndex).Methods("GET")

	pages := router.NewRoute().Subrouter()
	pages.Use(v1mware.RequireSession(u.sessions))
	pages.HandleFunc("/chat", u.HandleChatPage).Methods("GET")
	pages.HandleFunc("/chat", u.HandleChatSubmit).Methods("POST")
	pages.HandleFunc("/document", u.HandleDocumentPage).Methods("GET")
	pages.HandleFunc("/document/upload", u.HandleDocumentUpload).Methods("POST")
	pages.HandleFunc("/document/clear", u.HandleDocumentClear).Methods("POST")
	pages.HandleFunc("/document/ask", u.HandleDocumentAsk).Methods("POST")
}

// HandleIndex drops any previous session and its state, then starts over on the chat tab
func (u *UI) HandleIndex(w http.ResponseWriter, r *http.Request) {
	l := logger.For(logger.WEB)

	if previous := u.sessions.ClearSession(w, r); previous != "" {
		if err := u.store.Delete(r.Context(), previous); err != nil {
			l.Warn().Err(err).Str("session_id", previous).Msg("Failed to drop previous workspace")
		}
	}

	sessionID, err := u.sessions.CreateSession(r.Context(), w)
	if err != nil {
		l.Error().Err(err).Msg("Failed to start session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	l.Info().Str("session_id", sessionID).Str("client_ip", r.RemoteAddr).Msg("Session started")
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

type pageData struct {
	Tab     string
	Notices []models.Notice
	Busy    bool
}

type chatData struct {
	pageData
	Latest    template.HTML
	LatestRaw string
	HasReply  bool
}

type documentMessage struct {
	Role    models.Role
	Content string
	HTML    template.HTML
}

type documentData struct {
	pageData
	Document docqa.Status
	Messages []documentMessage
}

func (u *UI) HandleChatPage(w http.ResponseWriter, r *http.Request) {
	sessionID := v1mware.GetSessionID(r)

	messages, err := u.chat.Transcript(r.Context(), sessionID)
	if err != nil {
		u.fail(w, err)
		return
	}

	data := chatData{pageData: pageData{Tab: "chat", Notices: u.takeNotices(r.Context(), sessionID)}}
	transcript := models.Transcript{Messages: messages}
	if latest, ok := transcript.LatestReply(); ok {
		data.HasReply = true
		data.LatestRaw = latest.Content
		data.Latest = u.renderer.MustRender(latest.Content)
	}

	u.render(w, chatPage, data)
}

func (u *UI) HandleChatSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := v1mware.GetSessionID(r)

	_, err := u.chat.Submit(r.Context(), sessionID, r.FormValue("input"))
	if err != nil && !u.absorb(r.Context(), sessionID, err) {
		u.fail(w, err)
		return
	}

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (u *UI) HandleDocumentPage(w http.ResponseWriter, r *http.Request) {
	sessionID := v1mware.GetSessionID(r)

	status, err := u.docs.Status(r.Context(), sessionID)
	if err != nil {
		u.fail(w, err)
		return
	}

	messages, err := u.docs.Transcript(r.Context(), sessionID)
	if err != nil {
		u.fail(w, err)
		return
	}

	data := documentData{
		pageData: pageData{
			Tab:     "document",
			Notices: u.takeNotices(r.Context(), sessionID),
			Busy:    status.Loaded && !status.CanSubmit,
		},
		Document: status,
		Messages: make([]documentMessage, 0, len(messages)),
	}
	for _, m := range messages {
		dm := documentMessage{Role: m.Role, Content: m.Content}
		if m.Role == models.RoleAssistant {
			dm.HTML = u.renderer.MustRender(m.Content)
		}
		data.Messages = append(data.Messages, dm)
	}

	u.render(w, documentPage, data)
}

func (u *UI) HandleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := v1mware.GetSessionID(r)
	l := logger.For(logger.WEB).With().Str("session_id", sessionID).Logger()

	upload, err := docqa.UploadFromRequest(w, r, "file", u.maxUpload)
	switch {
	case errors.Is(err, docqa.ErrMissingFile):
		// Cancelled file picker
	case errors.Is(err, docqa.ErrUploadTooLarge):
		u.notify(r.Context(), sessionID, docqa.NoticeFailed)
	case err != nil:
		l.Warn().Err(err).Msg("Failed to read upload")
		u.notify(r.Context(), sessionID, docqa.NoticeFailed)
	default:
		notice, err := u.docs.Upload(r.Context(), sessionID, upload)
		if errors.Is(err, dispatch.ErrInFlight) {
			notice = NoticeBusy
		} else if err != nil && notice == (models.Notice{}) {
			u.fail(w, err)
			return
		}
		u.notify(r.Context(), sessionID, notice)
	}

	http.Redirect(w, r, "/document", http.StatusSeeOther)
}

func (u *UI) HandleDocumentClear(w http.ResponseWriter, r *http.Request) {
	if err := u.docs.Clear(r.Context(), v1mware.GetSessionID(r)); err != nil {
		u.fail(w, err)
		return
	}
	http.Redirect(w, r, "/document", http.StatusSeeOther)
}

func (u *UI) HandleDocumentAsk(w http.ResponseWriter, r *http.Request) {
	sessionID := v1mware.GetSessionID(r)

	_, err := u.docs.Submit(r.Context(), sessionID, r.FormValue("input"))
	if err != nil && !u.absorb(r.Context(), sessionID, err) {
		u.fail(w, err)
		return
	}

	http.Redirect(w, r, "/document", http.StatusSeeOther)
}

// absorb handles the submission errors a page expresses without an error
// status: blank input and a missing document are silent no-ops, a busy flow
// becomes a notice
func (u *UI) absorb(ctx context.Context, sessionID string, err error) bool {
	switch {
	case errors.Is(err, dispatch.ErrEmptyInput), errors.Is(err, docqa.ErrNoDocument):
		return true
	case errors.Is(err, dispatch.ErrInFlight):
		u.notify(ctx, sessionID, NoticeBusy)
		return true
	}
	return false
}

func (u *UI) notify(ctx context.Context, sessionID string, notice models.Notice) {
	err := u.store.Update(ctx, sessionID, func(state *workspace.State) error {
		state.Notify(notice)
		return nil
	})
	if err != nil {
		logger.For(logger.WEB).Warn().Err(err).Str("session_id", sessionID).Msg("Failed to queue notice")
	}
}

func (u *UI) takeNotices(ctx context.Context, sessionID string) []models.Notice {
	var notices []models.Notice
	err := u.store.Update(ctx, sessionID, func(state *workspace.State) error {
		notices = state.TakeNotices()
		return nil
	})
	if err != nil {
		logger.For(logger.WEB).Warn().Err(err).Str("session_id", sessionID).Msg("Failed to read notices")
	}
	return notices
}

func (u *UI) render(w http.ResponseWriter, page *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := page.ExecuteTemplate(w, "layout", data); err != nil {
		logger.For(logger.WEB).Error().Err(err).Msg("Failed to render page")
	}
}

func (u *UI) fail(w http.ResponseWriter, err error) {
	logger.For(logger.WEB).Error().Err(err).Msg("Page request failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
