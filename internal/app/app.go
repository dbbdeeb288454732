package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/config"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/journal"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/predict"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/telemetry"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/ws"
	"github.com/tianzhicdev/tetris-battle-sub004/logging"
	loggingSinks "github.com/tianzhicdev/tetris-battle-sub004/logging/sinks"
)

// Options control one client run.
type Options struct {
	ConfigPath string
	Logger     telemetry.Logger

	// Script, when non-empty, drives the session with the listed actions
	// at ScriptInterval. Used by the headless bot.
	Script         []sim.Action
	ScriptInterval time.Duration
}

// Run wires config, logging, telemetry, the journal, and the websocket
// client together and blocks until the connection or context ends.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if raw := os.Getenv("TETRIS_SERVER_URL"); raw != "" {
		cfg.ServerURL = raw
	}
	if raw := os.Getenv("TETRIS_JOURNAL_PATH"); raw != "" {
		cfg.JournalPath = raw
	}

	router, closeSinks, err := buildRouter(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
		closeSinks()
	}()

	counters := telemetry.NewCounters()
	session := predict.NewSession(predict.Config{
		MaxPending: cfg.MaxPending,
		Metrics:    counters,
		Logger:     logger,
	})

	removeObserver := session.AddObserver(predict.ObserverFunc(func(event predict.Misprediction) {
		router.Publish(ctx, logging.Event{
			Type:     logging.EventMisprediction,
			Session:  session.ID(),
			Seq:      event.Seq,
			Severity: logging.SeverityWarn,
			Category: logging.CategoryGameplay,
			Payload:  map[string]any{"reason": event.Reason},
		})
	}))
	defer removeObserver()

	var recorder ws.Recorder
	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.StartSession(session.ID(), time.Now()); err != nil {
			return err
		}
		recorder = store
	}

	router.Publish(ctx, logging.Event{
		Type:     logging.EventSessionStart,
		Session:  session.ID(),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})

	client, err := ws.Dial(ctx, cfg.ServerURL, session, ws.Config{
		Logger:  logger,
		Journal: recorder,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	router.Publish(ctx, logging.Event{
		Type:     logging.EventNetworkConnect,
		Session:  session.ID(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  map[string]any{"url": cfg.ServerURL},
	})

	if len(opts.Script) > 0 {
		go runScript(ctx, client, opts.Script, opts.ScriptInterval, logger)
	}

	runErr := client.Run(ctx)

	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventNetworkClose,
		Session:  session.ID(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
	})
	if snapshot, err := json.Marshal(counters.Read()); err == nil {
		logger.Printf("session %s counters: %s", session.ID(), snapshot)
	}

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("client stopped: %w", runErr)
	}
	return nil
}

func buildRouter(cfg config.Logging) (*logging.Router, func(), error) {
	logConfig := logging.DefaultConfig()
	logConfig.EnabledSinks = cfg.Sinks
	if cfg.Debug {
		logConfig.MinimumSeverity = logging.SeverityDebug
	}

	var sinks []logging.NamedSink
	closers := make([]func(), 0, 1)
	if logConfig.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout)})
	}
	if logConfig.HasSink("json") {
		path := cfg.JSONFilePath
		if path == "" {
			path = "client-events.ndjson"
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open json log %s: %w", path, err)
		}
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(file)})
		closers = append(closers, func() { file.Close() })
	}

	router := logging.NewRouter(logConfig, logging.SystemClock{}, sinks)
	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}
	return router, closeAll, nil
}

func runScript(ctx context.Context, client *ws.Client, script []sim.Action, interval time.Duration, logger telemetry.Logger) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for _, action := range script {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		seq, ok, err := client.SendInput(action)
		if err != nil {
			logger.Printf("script send %s: %v", action, err)
			return
		}
		if !ok {
			logger.Printf("script action %s not applicable, skipped", action)
			continue
		}
		logger.Printf("script sent %s seq=%d", action, seq)
	}
}
