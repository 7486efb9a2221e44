package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mdalbakiakon/lms-backend/internal/config"
	"github.com/mdalbakiakon/lms-backend/internal/es"
	authhdl "github.com/mdalbakiakon/lms-backend/internal/handlers/auth"
	"github.com/mdalbakiakon/lms-backend/internal/handlers/lms"
	"github.com/mdalbakiakon/lms-backend/internal/logging"
	"github.com/mdalbakiakon/lms-backend/internal/mailer"
	authmw "github.com/mdalbakiakon/lms-backend/internal/middleware/auth"
	loggingmw "github.com/mdalbakiakon/lms-backend/internal/middleware/logging"
	"github.com/mdalbakiakon/lms-backend/internal/mykafka"
	"github.com/mdalbakiakon/lms-backend/internal/service/reset"
	"github.com/mdalbakiakon/lms-backend/internal/service/token"
	httpserver "github.com/mdalbakiakon/lms-backend/internal/transport/http"
)

const courseIndex = "course"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	tokens := token.NewService(
		[]byte(cfg.JWT_SECRET),
		[]byte(cfg.REFRESH_SECRET),
		token.DefaultAccessTTL,
		token.DefaultRefreshTTL,
	)
	resetSvc := reset.NewService([]byte(cfg.RESET_SECRET), cfg.RESET_TOKEN_TTL)

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
	} else {
		logger.Warn("kafka disabled: KAFKA_ADDRESS not set")
	}

	var searchHandler *lms.SearchHandler
	courseHandler := &lms.CourseHandler{DB: db, Producer: producer, Index: courseIndex}
	if cfg.ES_URL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		courseHandler.ES = client
		searchHandler = &lms.SearchHandler{ES: client, Index: courseIndex}
	} else {
		logger.Warn("elasticsearch disabled: ES_URL not set")
		searchHandler = &lms.SearchHandler{Index: courseIndex}
	}

	var sender mailer.Sender
	if cfg.SMTP_HOST != "" {
		smtp, err := mailer.NewSMTPSender(cfg.SMTP_HOST, cfg.SMTP_PORT, cfg.SMTP_USER, cfg.SMTP_PASSWORD, cfg.MAIL_FROM)
		if err != nil {
			log.Fatalf("mailer init error: %v", err)
		}
		sender = smtp
	} else {
		logger.Warn("mailer disabled: SMTP_HOST not set")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth: &authhdl.AuthHandler{
			DB:          db,
			Tokens:      tokens,
			Reset:       resetSvc,
			Mailer:      sender,
			Producer:    producer,
			FrontendURL: cfg.FRONTEND_URL,
		},
		Categories:  &lms.CategoryHandler{DB: db},
		Courses:     courseHandler,
		Enrollments: &lms.EnrollmentHandler{DB: db, Producer: producer},
		Dashboard:   &lms.DashboardHandler{DB: db},
		Search:      searchHandler,
		MW:          &authmw.Middleware{Tokens: tokens},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + cfg.APP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
