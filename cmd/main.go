package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepgram/parley/internal/api/v1/handlers"
	"github.com/deepgram/parley/internal/config"
	"github.com/deepgram/parley/internal/services"
	"github.com/deepgram/parley/internal/web"
	"github.com/deepgram/parley/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	logger.Init(os.Stdout)
	if envErr != nil {
		log.Debug().Msg("No .env file found, using system env")
	}

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svcs.Close()

	warnInsecureCookies(config.GetSessionCookieSecure())

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           setupRouter(svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	// Allow in-flight completions to finish
	ctx, cancel := context.WithTimeout(context.Background(), config.GetLLMTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// warnInsecureCookies flags the one setup where pages silently lose state:
// the listener is plain http, so browsers drop Secure cookies unless a TLS
// proxy sits in front or the host is localhost
func warnInsecureCookies(secure bool) bool {
	if !secure {
		return false
	}
	log.Warn().
		Str("env", "SESSION_COOKIE_SECURE").
		Msg("Session cookies are Secure but the server listens on plain http; serve behind TLS or set SESSION_COOKIE_SECURE=false for local http access")
	return true
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	handlers.RegisterV1Routes(r, svcs)

	web.NewUI(
		svcs.GetChatService(),
		svcs.GetDocQAService(),
		svcs.GetWorkspaceStore(),
		svcs.GetMarkdownService(),
		svcs.GetSessionService(),
		config.GetMaxUploadBytes(),
	).RegisterRoutes(r)

	return r
}
