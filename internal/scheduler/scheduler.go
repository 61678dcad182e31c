package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/app"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/notifier"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/recorder"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/strategy"
)

const maxScanWorkers = 4

// Sender delivers operator messages. It is nil when Telegram is disabled.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Dashboard *app.Dashboard
	Notifier  Sender
	Recorder  recorder.Recorder
	Watchlist []string
	IdleTTL   time.Duration
	Ctx       context.Context

	mu    sync.Mutex
	zones map[string]model.Zone
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, dash *app.Dashboard, sender Sender, rec recorder.Recorder, watchlist []string, idleTTL time.Duration) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Dashboard: dash,
		Notifier:  sender,
		Recorder:  rec,
		Watchlist: watchlist,
		IdleTTL:   idleTTL,
		Ctx:       ctx,
		zones:     make(map[string]model.Zone),
	}
}

// RegisterAll registers the watchlist scan and the session purge.
func (s *Scheduler) RegisterAll(scanCron, purgeCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the watchlist scan immediately (RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	log.Printf("[INFO] running watchlist scan (%d symbols)", len(s.Watchlist))
	snaps := s.Scan(s.Ctx)
	log.Printf("[INFO] watchlist scan done: %d/%d symbols", len(snaps), len(s.Watchlist))
}

// Scan builds a fresh chart for every watchlist entry, records its snapshot
// and alerts when the RSI zone moved into an extreme. Failed symbols are
// logged and skipped.
func (s *Scheduler) Scan(ctx context.Context) []model.Snapshot {
	results := make([]*model.Snapshot, len(s.Watchlist))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxScanWorkers)
	for i, query := range s.Watchlist {
		g.Go(func() error {
			symbol := s.Dashboard.Resolve(query)
			chart, err := s.Dashboard.Collector.Chart(gctx, symbol)
			if err != nil {
				log.Printf("[WARN] scan %s: %v", symbol, err)
				return nil
			}
			snap := chart.Snapshot
			s.observe(gctx, &snap)
			results[i] = &snap
			return nil
		})
	}
	_ = g.Wait()

	snaps := make([]model.Snapshot, 0, len(results))
	for _, r := range results {
		if r != nil {
			snaps = append(snaps, *r)
		}
	}
	return snaps
}

// observe compares snap with the previous zone, alerts on a change and
// records the snapshot. The first reading of a symbol only sets the baseline.
func (s *Scheduler) observe(ctx context.Context, snap *model.Snapshot) {
	prev, known := s.previousZone(ctx, snap.Symbol)
	next := snap.Signal.Zone

	s.mu.Lock()
	s.zones[snap.Symbol] = next
	s.mu.Unlock()

	if err := s.Recorder.RecordSnapshot(ctx, snap); err != nil {
		log.Printf("[ERROR] record snapshot %s: %v", snap.Symbol, err)
	}

	if !known || !strategy.ZoneChanged(prev, next) {
		return
	}
	log.Printf("[INFO] %s moved %s -> %s", snap.Symbol, prev, next)

	evt := &recorder.AlertEvent{
		Symbol:   snap.Symbol,
		FromZone: prev,
		ToZone:   next,
		Price:    snap.Price,
		Label:    snap.Signal.Label,
		SentAt:   time.Now(),
	}
	if err := s.send(ctx, notifier.FormatZoneAlert(prev, snap)); err != nil {
		evt.Note = err.Error()
	}
	if err := s.Recorder.RecordAlert(ctx, evt); err != nil {
		log.Printf("[ERROR] record alert %s: %v", snap.Symbol, err)
	}
}

func (s *Scheduler) previousZone(ctx context.Context, symbol string) (model.Zone, bool) {
	s.mu.Lock()
	z, ok := s.zones[symbol]
	s.mu.Unlock()
	if ok {
		return z, true
	}
	z, ok, err := s.Recorder.LastZone(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] last zone %s: %v", symbol, err)
		return "", false
	}
	return z, ok
}

func (s *Scheduler) purgeTask() {
	if s.Dashboard.Sessions == nil {
		return
	}
	if n := s.Dashboard.Sessions.Purge(s.IdleTTL); n > 0 {
		log.Printf("[INFO] purged %d idle sessions", n)
	}
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch name {
	case "/quote", "/q":
		if len(args) == 0 {
			args = s.Watchlist
		}
		return notifier.FormatQuotes(s.Dashboard.Quotes(ctx, args))
	case "/news", "/n":
		symbol, items := s.Dashboard.News(ctx, strings.Join(args, " "))
		return notifier.FormatNews(symbol, items)
	case "/scan":
		snaps := s.Scan(ctx)
		if len(snaps) == 0 {
			return "Nessun dato disponibile per la watchlist."
		}
		parts := make([]string, len(snaps))
		for i := range snaps {
			parts[i] = notifier.FormatSnapshot(&snaps[i])
		}
		return strings.Join(parts, "\n")
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) send(ctx context.Context, text string) error {
	if s.Notifier == nil {
		return nil
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
		return err
	}
	return nil
}
