// Server runs the team governance HTTP API.
// Configuration comes from the environment (or .env): HTTP_ADDR, DATABASE_URL,
// JWT_PUBLIC_KEY, and optionally KAFKA_BROKERS and OTLP_ENDPOINT.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamerie/backend/internal/audit"
	audithandler "gamerie/backend/internal/audit/handler"
	auditrepo "gamerie/backend/internal/audit/repository"
	"gamerie/backend/internal/config"
	"gamerie/backend/internal/db"
	"gamerie/backend/internal/events"
	"gamerie/backend/internal/events/producer"
	"gamerie/backend/internal/platform/teamlock"
	"gamerie/backend/internal/presence"
	"gamerie/backend/internal/security"
	"gamerie/backend/internal/server"
	"gamerie/backend/internal/server/middleware"
	"gamerie/backend/internal/team/repository"
	teamservice "gamerie/backend/internal/team/service"
	"gamerie/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	verifier, err := buildVerifier(cfg)
	if err != nil {
		log.Fatalf("security: %v", err)
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "gamerie-teams", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	var emitter events.Emitter
	var kafkaProducer *producer.KafkaProducer
	if brokers := cfg.EventsKafkaBrokersList(); len(brokers) > 0 {
		kafkaProducer, err = producer.NewKafkaProducer(brokers, cfg.EventsKafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		emitter = kafkaProducer
		log.Printf("events: emitting to kafka topic %s", cfg.EventsKafkaTopic)
	} else if cfg.OTLPEndpoint != "" {
		emitter = otel.NewEventEmitter(providers.LoggerProvider)
		log.Printf("events: emitting as OTel log records to %s", cfg.OTLPEndpoint)
	} else {
		log.Print("events: no sink configured; governance events are not emitted")
	}

	auditRepo := auditrepo.NewPostgresRepository(conn)
	auditor := audit.NewLogger(auditRepo, middleware.GetClientIP)

	svc := teamservice.NewMembershipService(
		repository.NewPostgresRepository(conn),
		teamlock.NewGuard(),
		emitter,
		auditor,
	)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.New(server.Deps{
			Teams:    svc,
			Verifier: verifier,
			Presence: presence.NewStore(cfg.PresenceTTLDuration()),
			Pinger:   conn,
			Audit:    audithandler.NewHandler(auditRepo, svc),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits finish before closing their sinks.
	time.Sleep(events.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// buildVerifier parses JWT_PUBLIC_KEY into an access token verifier. In
// non-production environments a missing key falls back to the embedded
// development keypair so the API is usable locally.
func buildVerifier(cfg *config.Config) (*security.Verifier, error) {
	if cfg.JWTPublicKey == "" {
		log.Print("security: JWT_PUBLIC_KEY not set; using embedded development keypair (never use in production)")
		return security.NewTestVerifier()
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	return security.NewVerifier(pub, cfg.JWTIssuer, cfg.JWTAudience), nil
}
