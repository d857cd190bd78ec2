// studieplus-scraper authenticates against a Danish school's StudiePlus
// GWT-RPC backend and serves a cache-backed view of the current schedule
// and open assignments.
//
// Startup sequence:
//  1. Load configuration (JSON file, environment, or defaults).
//  2. Build the logger and metrics collector.
//  3. Construct the transport, discover the institution, log in.
//  4. Construct the cache-backed domain API and the file worker pool.
//  5. Start the read-only status HTTP server.
//  6. Run a ticker loop that refreshes the current week's schedule and
//     open assignments, logging a one-line summary each tick.
//  7. Block until OS signals SIGINT or SIGTERM, then shut down: stop the
//     ticker and wait for an in-flight poll to finish, stop the keepalive
//     and the file worker pool, exit. Idle HTTP connections are not closed
//     explicitly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ccoodduu/studieplus-scraper/api"
	"github.com/ccoodduu/studieplus-scraper/cache"
	"github.com/ccoodduu/studieplus-scraper/config"
	"github.com/ccoodduu/studieplus-scraper/logger"
	"github.com/ccoodduu/studieplus-scraper/metrics"
	"github.com/ccoodduu/studieplus-scraper/status"
	"github.com/ccoodduu/studieplus-scraper/transport"
	"github.com/ccoodduu/studieplus-scraper/worker"
)

func main() {
	// ── Flags ──────────────────────────────────────────────────────────────
	configFile := flag.String("config", "", "Path to JSON config file (optional; uses defaults/environment if omitted)")
	flag.Parse()

	// ── Logger ─────────────────────────────────────────────────────────────
	log := logger.New(logger.LevelInfo)
	log.Info("studieplus-scraper starting up")

	// ── Configuration ──────────────────────────────────────────────────────
	var cfg *config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			log.Errorf("failed to load config from %q: %v", *configFile, err)
			os.Exit(1)
		}
		log.Infof("configuration loaded from %q", *configFile)
	} else {
		cfg = config.FromEnv()
		log.Info("configuration loaded from environment/defaults")
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	// ── Metrics ────────────────────────────────────────────────────────────
	m := metrics.NewMetrics()

	// ── Transport + login ──────────────────────────────────────────────────
	tr, err := transport.New(transport.Config{
		Username:        cfg.Username,
		Password:        cfg.Password,
		School:          cfg.School,
		LoginTimeout:    cfg.LoginTimeout,
		RPCTimeout:      cfg.RPCTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		DebugCaptureDir: cfg.DebugCaptureDir,
		UTLSFingerprint: cfg.UTLSFingerprint,
	})
	if err != nil {
		log.Errorf("failed to construct transport: %v", err)
		os.Exit(1)
	}

	loginCtx, cancelLogin := context.WithTimeout(context.Background(), cfg.LoginTimeout)
	err = tr.Login(loginCtx)
	cancelLogin()
	if err != nil {
		log.Errorf("login failed: %v", err)
		os.Exit(1)
	}
	log.Infof("logged in to %q", cfg.School)

	keepAlive := transport.NewKeepAlive(tr, 10*time.Minute)
	keepAliveCtx, cancelKeepAlive := context.WithCancel(context.Background())
	keepAlive.Start(keepAliveCtx)

	// ── Cache-backed domain API + file worker pool ─────────────────────────
	c := cache.New(nil)
	fileWorkers := cfg.FileWorkers
	if fileWorkers < 1 {
		fileWorkers = 1
	}
	files := worker.NewWorkerPool(fileWorkers)
	files.Start()
	log.Infof("file worker pool started with %d workers", fileWorkers)

	domainAPI := api.New(tr, c, m, files)

	// ── Status server ──────────────────────────────────────────────────────
	statusSrv := status.New(m, c)
	if cfg.StatusAddr != "" {
		go func() {
			if err := statusSrv.ListenAndServe(cfg.StatusAddr); err != nil {
				log.Errorf("status server error: %v", err)
			}
		}()
		log.Infof("status server listening on %s", cfg.StatusAddr)
	} else {
		log.Info("status server disabled (no status_addr configured)")
	}

	// ── Poll loop ────────────────────────────────────────────────────────────
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	stopPoll := make(chan struct{})
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runPoll(log, domainAPI, statusSrv, cfg.RPCTimeout)
			case <-stopPoll:
				return
			}
		}
	}()
	log.Infof("poll loop started; refreshing every %s", pollInterval)
	runPoll(log, domainAPI, statusSrv, cfg.RPCTimeout)

	// ── Graceful shutdown ──────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Println() // newline after ^C
	log.Infof("received signal %s; shutting down", sig)

	close(stopPoll)
	<-pollDone

	keepAlive.Stop()
	cancelKeepAlive()

	files.Stop()

	snap := m.Snapshot()
	log.Infof("final metrics – requests: %d | successes: %d | failures: %d | rps: %.1f",
		snap.RPCAttempts, snap.RPCSuccess, snap.RPCFailed, snap.RequestsPerSecond)
	log.Info("studieplus-scraper shut down cleanly")
}

// runPoll refreshes the current week's schedule and open assignments,
// logging a one-line summary and recording the outcome for the status
// endpoint (§4.J step 6).
func runPoll(log *logger.Logger, a *api.API, statusSrv *status.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	lessons, week, year, _, err := a.ParseSchedule(ctx, 0)
	if err != nil {
		log.Errorf("poll: schedule refresh failed: %v", err)
		statusSrv.RecordPoll(time.Now(), err)
		return
	}

	assignments, err := a.GetAssignments(ctx, api.AssignmentFilter{})
	if err != nil {
		log.Errorf("poll: assignment refresh failed: %v", err)
		statusSrv.RecordPoll(time.Now(), err)
		return
	}

	log.Infof("poll – week %s/%s: %d lessons, %d open assignments", week, year, len(lessons), len(assignments))
	statusSrv.RecordPoll(time.Now(), nil)
}
