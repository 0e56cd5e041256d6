package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/pquerna/otp/totp"

	"tradeterm/config"
	"tradeterm/internal/api"
	"tradeterm/internal/auth"
	"tradeterm/internal/execution"
	"tradeterm/internal/logger"
	"tradeterm/internal/marketfeed"
	"tradeterm/internal/metrics"
	"tradeterm/internal/model"
	"tradeterm/internal/stream"
	"tradeterm/internal/symbols"
	"tradeterm/internal/voice"
	"tradeterm/pkg/angelone"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("[terminal] loaded .env")
	}

	cfg := config.Load()
	slogger := logger.Init("terminal", slog.LevelInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Redis: credentials + LTP cache ----
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("[terminal] redis connection failed: %v", err)
	}
	log.Printf("[terminal] redis connected at %s", cfg.RedisAddr)

	// ---- Instrument catalog ----
	catalog, err := symbols.Open(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("[terminal] instrument catalog open failed: %v", err)
	}
	defer catalog.Close()

	// ---- Order journal ----
	journal, err := execution.NewJournal(cfg.OrderLogPath)
	if err != nil {
		log.Fatalf("[terminal] order journal open failed: %v", err)
	}
	defer journal.Close()

	// ---- Broker client ----
	broker := angelone.NewClient(angelone.Config{RootURL: cfg.BrokerRootURL})

	// ---- Metrics ----
	m := metrics.New()
	go metrics.Serve(cfg.MetricsAddr)

	// ---- Optional service session for the LTP feed ----
	var feed *marketfeed.Feed
	if cfg.AngelClientCode != "" {
		cfg.RequireBootstrap()
		serviceCreds, err := bootstrapSession(ctx, broker, cfg)
		if err != nil {
			log.Fatalf("[terminal] broker session bootstrap failed: %v", err)
		}
		log.Printf("[terminal] broker service session established for %s", cfg.AngelClientCode)

		feed = marketfeed.New(marketfeed.FetcherFunc(
			func(ctx context.Context, token, exchange string) (string, error) {
				return broker.QuoteLTP(ctx, serviceCreds, exchange, token)
			}), rdb, m)
	} else {
		log.Println("[terminal] no broker service session configured, price gate disabled")
	}

	// ---- Pipeline ----
	creds := auth.NewRedisProvider(rdb)
	hub := stream.NewHub()

	pipelineCfg := execution.Config{
		Credentials: creds,
		Resolver:    catalog,
		Broker:      broker,
		Journal:     journal,
		Publisher:   hub,
		Metrics:     m,
		Logger:      slogger,
	}
	if feed != nil {
		pipelineCfg.Feed = feed
	}
	pipeline := execution.New(pipelineCfg)

	// ---- Voice channel ----
	settings, err := voice.LoadSettings(cfg.VoiceSettingsPath)
	if err != nil {
		log.Fatalf("[terminal] voice settings load failed: %v", err)
	}
	transcriber := voice.NewTranscriber(cfg.TranscribeURL, 0, nil)
	voiceSvc := voice.NewService(transcriber, pipeline, slogger)

	// ---- HTTP server ----
	server := api.NewServer(api.Config{
		Pipeline: pipeline,
		Journal:  journal,
		Voice:    voiceSvc,
		Settings: settings,
		Hub:      hub,
		Metrics:  m,
		Logger:   slogger,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[terminal] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[terminal] http server failed: %v", err)
		}
	}()

	// ---- Wait for shutdown signal ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[terminal] shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[terminal] http shutdown: %v", err)
	}
	cancel()
	log.Println("[terminal] bye")
}

// bootstrapSession logs in with a fresh TOTP and caches the service
// credentials in Redis so operator tooling can reuse them.
func bootstrapSession(ctx context.Context, broker *angelone.Client, cfg *config.Config) (model.Credentials, error) {
	code, err := totp.GenerateCode(cfg.AngelTOTPSecret, time.Now())
	if err != nil {
		return model.Credentials{}, err
	}

	creds, err := broker.GenerateSession(ctx, cfg.AngelAPIKey, cfg.AngelClientCode, cfg.AngelPassword, code)
	if err != nil {
		return model.Credentials{}, err
	}
	return creds, nil
}
