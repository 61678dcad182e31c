package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/advisor"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/app"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/auth"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/cache"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/collector"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/config"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/logging"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/news"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/notifier"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/portfolio"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/recorder"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/resolver"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/scheduler"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/server"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/session"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/sheet"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	logCloser, err := logging.Setup(logging.Options{
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("[FATAL] init logging: %v", err)
	}
	defer logCloser.Close()
	log.Println("[INFO] CyberTrading Hub starting...")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Market data
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher)
	col.HistoryDays = cfg.DataSource.HistoryDays

	// Cache
	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatalf("[FATAL] init redis cache: %v", err)
		}
		store = rs
		log.Printf("[INFO] cache: redis %s", cfg.Cache.RedisAddr)
	} else {
		ls, err := cache.NewLocalStore(ctx, max(cfg.Cache.PriceTTL, cfg.Cache.NewsTTL))
		if err != nil {
			log.Fatalf("[FATAL] init local cache: %v", err)
		}
		store = ls
		log.Println("[INFO] cache: local")
	}
	defer store.Close()

	// AI advisor
	llm, err := advisor.NewGeminiCompleter(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model)
	if err != nil {
		log.Fatalf("[FATAL] init advisor: %v", err)
	}

	// Spreadsheet tables
	creds, err := cfg.GoogleCredentialsJSON()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	sheets, err := sheet.Open(ctx, cfg.Sheet.Store, sheet.Options{GoogleCredentials: creds})
	if err != nil {
		log.Fatalf("[FATAL] open sheet store: %v", err)
	}
	defer sheets.Close()

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	sessions := session.NewStore()
	res := resolver.New(cfg.Aliases)
	res.Default = cfg.DataSource.DefaultSymbol
	dash := &app.Dashboard{
		Resolver:  res,
		Collector: col,
		Feed:      news.NewClient(cfg.News.Language, cfg.News.Country),
		Advisor:   advisor.New(llm, cfg.Advisor.Language),
		Cache:     store,
		Sessions:  sessions,
		PriceTTL:  cfg.Cache.PriceTTL,
		NewsTTL:   cfg.Cache.NewsTTL,
	}

	// Scheduler and Telegram
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[INFO] telegram disabled")
	}
	sched := scheduler.NewScheduler(ctx, dash, sender, rec, cfg.Watchlist, cfg.Session.IdleTimeout)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Session.PurgeCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] RUN_ON_START enabled, scanning watchlist now")
		go sched.RunScanNow()
	}

	// HTTP API
	srv := server.NewHTTPServer(&server.Handler{
		Dashboard: dash,
		Auth:      auth.NewService(sheets, cfg.Sheet.UsersWorksheet),
		Portfolio: portfolio.NewBook(sheets, cfg.Sheet.PortfolioSheet),
		Sessions:  sessions,
	}, server.Options{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		log.Printf("[ERROR] http server: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] CyberTrading Hub stopped")
}
