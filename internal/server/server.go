package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bookline/apiserver/config"
	"github.com/bookline/apiserver/internal/auth"
	"github.com/bookline/apiserver/internal/db"
	"github.com/bookline/apiserver/internal/events"
	"github.com/bookline/apiserver/internal/handlers"
	"github.com/bookline/apiserver/internal/logger"
	"github.com/bookline/apiserver/internal/services"
	"github.com/bookline/apiserver/internal/storage"
	"github.com/bookline/apiserver/internal/store"
)

// Server wraps the HTTP server, the router and the resources they own.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	log        *zap.Logger
	publisher  events.Publisher
}

// New constructs a Server with all routes and middleware wired up.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	jwtSecret := strings.TrimSpace(cfg.JWT.Secret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	tokens := auth.NewTokenIssuer(jwtSecret, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	reservationRepo := store.NewReservationRepository(dbConn)
	attachmentRepo := store.NewAttachmentRepository(dbConn)

	publisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	files, err := newStorage(ctx, cfg)
	if err != nil {
		if publisher != nil {
			_ = publisher.Close()
		}
		_ = dbConn.Close()
		return nil, err
	}

	userService := services.NewUserService(userRepo)
	reservationService := services.NewReservationService(reservationRepo, publisher, log)
	attachmentService := services.NewAttachmentService(attachmentRepo, reservationRepo, files, log)

	authMiddleware := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		logger.RequestLogger(log),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/health", handlers.Health)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokens, log)
	})
	router.Route("/reservations", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.ReservationRouter(r, reservationService, log)
		if attachmentService.Enabled() {
			r.Route("/{reservationID}/attachments", func(ar chi.Router) {
				handlers.AttachmentRouter(ar, attachmentService, log)
			})
		}
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		log:        log,
		publisher:  publisher,
	}, nil
}

func newPublisher(ctx context.Context, cfg config.Config, log *zap.Logger) (events.Publisher, error) {
	switch cfg.Events.Backend {
	case "rabbitmq":
		return events.NewRabbitMQPublisher(cfg.Events.RabbitMQ)
	case "pubsub":
		return events.NewPubSubPublisher(ctx, cfg.Events.PubSub)
	case "":
		log.Info("event publishing disabled, no backend configured")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Storage.Backend {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	files := storage.NewStorage(backend)
	if err := files.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return files, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown and releases owned resources.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
