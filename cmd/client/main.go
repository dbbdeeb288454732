package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/app"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
)

func main() {
	var configPath string
	var script string
	var interval time.Duration
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&script, "script", "", "comma-separated actions to play headlessly")
	flag.DurationVar(&interval, "interval", 250*time.Millisecond, "delay between scripted actions")
	flag.Parse()

	actions, err := parseScript(script)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Options{
		ConfigPath:     configPath,
		Script:         actions,
		ScriptInterval: interval,
	}); err != nil {
		log.Fatalf("%v", err)
	}
}

func parseScript(script string) ([]sim.Action, error) {
	if script == "" {
		return nil, nil
	}
	parts := strings.Split(script, ",")
	actions := make([]sim.Action, 0, len(parts))
	for _, part := range parts {
		action := sim.Action(strings.TrimSpace(part))
		if !action.Valid() {
			return nil, fmt.Errorf("unknown action %q", part)
		}
		actions = append(actions, action)
	}
	return actions, nil
}
