package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server holds process settings read from the environment.
type Server struct {
	Port           string
	StaticDir      string
	AllowedOrigins []string
	Preset         string
	PresetFile     string
	Seed           int64
	MaxConnsPerIP  int
	MsgRate        int
	MsgWindow      time.Duration
	MaxSessions    int
}

// FromEnv reads Server settings, falling back to defaults for unset values.
func FromEnv() (Server, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Server, error) {
	s := Server{
		Port:          getenv("PORT"),
		StaticDir:     getenv("STATIC_DIR"),
		Preset:        getenv("PRESET"),
		PresetFile:    getenv("PRESET_FILE"),
		MaxConnsPerIP: 4,
		MsgRate:       120,
		MsgWindow:     time.Second,
		MaxSessions:   100,
	}
	if s.Port == "" {
		s.Port = "8080"
	}
	if s.StaticDir == "" {
		s.StaticDir = "../client/dist"
	}
	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				s.AllowedOrigins = append(s.AllowedOrigins, o)
			}
		}
	}

	var err error
	if v := getenv("SEED"); v != "" {
		if s.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Server{}, fmt.Errorf("SEED: %w", err)
		}
	}
	if s.MaxConnsPerIP, err = positiveInt(getenv, "MAX_CONNS_PER_IP", s.MaxConnsPerIP); err != nil {
		return Server{}, err
	}
	if s.MsgRate, err = positiveInt(getenv, "MSG_RATE", s.MsgRate); err != nil {
		return Server{}, err
	}
	if s.MaxSessions, err = positiveInt(getenv, "MAX_SESSIONS", s.MaxSessions); err != nil {
		return Server{}, err
	}
	return s, nil
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
