// Package httpadapter exposes the bot over HTTP: the webhook ingress the
// messenger posts commands to and the status endpoint it polls for the
// command menu. Transport concerns beyond that (TLS termination, process
// supervision) belong to the embedding application.
package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	botgo "github.com/convexim/botgo"
	"github.com/convexim/botgo/logger"
	"github.com/convexim/botgo/models"
)

// Config holds adapter configuration.
type Config struct {
	ListenAddr string
	// AllowAll opens CORS to any origin (dev mode for smartapp web
	// clients).
	AllowAll bool
}

// Server serves the webhook and status endpoints for one bot.
type Server struct {
	cfg        Config
	bot        *botgo.Bot
	log        *logger.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates the adapter around a constructed bot.
func New(cfg Config, bot *botgo.Bot, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{cfg: cfg, bot: bot, log: log}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"https://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Post("/command", s.handleCommand)
	r.Get("/status", s.handleStatus)

	return r
}

// Router returns the chi router, so the embedding application can mount
// additional routes.
func (s *Server) Router() chi.Router { return s.router }

// handleCommand is the webhook ingress. The 202 acknowledgement never
// waits for handler completion.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := s.bot.ExecuteCommand(r.Context(), body); err != nil {
		var unknown *botgo.ServerUnknownError
		if errors.As(err, &unknown) {
			s.log.Warn("rejecting command for unknown bot %s", unknown.BotID)
			writeBotDisabled(w, http.StatusServiceUnavailable,
				"No credentials for bot "+unknown.BotID.String())
			return
		}
		s.log.Warn("rejecting undecodable command: %v", err)
		writeBotDisabled(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"result": "accepted"})
}

// handleStatus answers the messenger's menu poll.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientFromQuery(r)
	if err != nil {
		writeBotDisabled(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := s.bot.Status(r.Context(), recipient)
	if err != nil {
		var unknown *botgo.ServerUnknownError
		if errors.As(err, &unknown) {
			writeBotDisabled(w, http.StatusServiceUnavailable,
				"No credentials for bot "+unknown.BotID.String())
			return
		}
		s.log.Error("building status: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"result": status,
	})
}

func recipientFromQuery(r *http.Request) (models.StatusRecipient, error) {
	q := r.URL.Query()

	botID, err := uuid.Parse(q.Get("bot_id"))
	if err != nil {
		return models.StatusRecipient{}, errors.New("status request carries no valid bot_id")
	}
	recipient := models.StatusRecipient{
		BotID:    botID,
		ChatType: models.ChatType(q.Get("chat_type")),
		ADLogin:  q.Get("ad_login"),
		ADDomain: q.Get("ad_domain"),
	}
	if huid := q.Get("user_huid"); huid != "" {
		id, err := uuid.Parse(huid)
		if err != nil {
			return models.StatusRecipient{}, errors.New("status request carries a malformed user_huid")
		}
		recipient.HUID = &id
	}
	if isAdmin := q.Get("is_admin"); isAdmin != "" {
		admin := isAdmin == "true"
		recipient.IsAdmin = &admin
	}
	return recipient, nil
}

// Start begins listening on the configured address, runs the bot's startup
// hooks first and blocks until the listener stops.
func (s *Server) Start(ctx context.Context) error {
	if err := s.bot.Startup(ctx); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.Info("bot webhook listening on %s", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener, then drains the bot.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.bot.Shutdown(ctx)
}
