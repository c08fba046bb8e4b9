package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to. The console API is meant
	// for a local UI shell, so the default binds to loopback.
	Addr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT"        envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"10s"`

	// EventKeepAlive is the interval of keep-alive frames on the navigation event stream.
	EventKeepAlive time.Duration `env:"HTTP_EVENT_KEEPALIVE" envDefault:"25s"`

	// WSAllowedOrigins lists host patterns allowed to open the WebSocket feed cross-origin.
	WSAllowedOrigins []string `env:"HTTP_WS_ALLOWED_ORIGINS" envSeparator:","`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = "127.0.0.1:8080"
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 5 * time.Second
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 60 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	if h.EventKeepAlive < time.Second {
		h.EventKeepAlive = time.Second
	}
	origins := make([]string, 0, len(h.WSAllowedOrigins))
	for _, o := range h.WSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	h.WSAllowedOrigins = origins
}
