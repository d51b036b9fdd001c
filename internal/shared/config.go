package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv           string
	HTTPAddr         string
	MetricsAddr      string // empty disables the metrics listener
	OverpassURL      string
	PermalinkBase    string
	OverpassRPS      float64
	OverpassInFlight int
	OverpassTimeout  time.Duration
	Debounce         time.Duration
	ChatRulesPath    string
	MaxSessions      int
	SessionIdle      time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:           env("APP_ENV", "prod"),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		OverpassURL:      env("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		PermalinkBase:    env("PERMALINK_BASE", "https://www.openstreetmap.org"),
		OverpassRPS:      atof("OVERPASS_RPS", 1),
		OverpassInFlight: atoi("OVERPASS_MAX_INFLIGHT", 2),
		OverpassTimeout:  time.Duration(atoi("OVERPASS_HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		Debounce:         time.Duration(atoi("DEBOUNCE_MS", 1000)) * time.Millisecond,
		ChatRulesPath:    os.Getenv("CHAT_RULES_PATH"),
		MaxSessions:      atoi("MAX_SESSIONS", 1000),
		SessionIdle:      time.Duration(atoi("SESSION_IDLE_SECONDS", 1800)) * time.Second,
	}
	if _, ok := os.LookupEnv("METRICS_ADDR"); !ok {
		c.MetricsAddr = ":9100"
	}
	if c.Debounce <= 0 {
		log.Warn().Dur("debounce", c.Debounce).Msg("DEBOUNCE_MS must be positive, using 1000")
		c.Debounce = time.Second
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
