// Package config resolves server settings from flags, falling back to
// DRAWBACK_* environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr         string
	Origins      string
	EnginePath   string
	AnalysisTime time.Duration
	ClockTime    time.Duration
	Dev          bool
}

// Load parses args (without the program name). Flags win over the environment.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("drawbackchess", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addr := fs.String("addr", getenv("DRAWBACK_ADDR", ":3000"), "listen address")
	origins := fs.String("origins", getenv("DRAWBACK_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	engine := fs.String("engine", getenv("DRAWBACK_ENGINE_PATH", ""), "path to a UCI engine binary; empty disables analysis")
	analysisMS := fs.Int("analysis-ms", getenvi("DRAWBACK_ANALYSIS_MS", 500), "engine move time in milliseconds")
	clockSeconds := fs.Int("clock-seconds", getenvi("DRAWBACK_CLOCK_SECONDS", 0), "clock for matchmade games; 0 disables clocks")
	dev := fs.Bool("dev", getenb("DRAWBACK_DEV", false), "development logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *analysisMS <= 0 {
		return Config{}, fmt.Errorf("analysis-ms must be positive, got %d", *analysisMS)
	}
	if *clockSeconds < 0 {
		return Config{}, fmt.Errorf("clock-seconds must not be negative, got %d", *clockSeconds)
	}
	return Config{
		Addr:         *addr,
		Origins:      *origins,
		EnginePath:   strings.TrimSpace(*engine),
		AnalysisTime: time.Duration(*analysisMS) * time.Millisecond,
		ClockTime:    time.Duration(*clockSeconds) * time.Second,
		Dev:          *dev,
	}, nil
}

// OriginList splits Origins for the websocket origin check.
func (c Config) OriginList() []string {
	var out []string
	for _, o := range strings.Split(c.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
