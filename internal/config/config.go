// Package config provides configuration management for go-placeholder.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// Default listener settings
	DefaultListenHost = "0.0.0.0"
	DefaultListenPort = 5000

	DefaultShutdownTimeout = 10 * time.Second
	DefaultUpdateFile      = ".update"
)

var (
	ErrInvalidPort = errors.New("invalid port")
	ErrInvalidHost = errors.New("invalid host")
)

// MainConfig holds the main configuration for go-placeholder
type MainConfig struct {
	// Mutex for thread-safe access
	mux sync.Mutex `json:"-"`

	// Server settings
	Server ServerConfig `json:"server"`

	// Debug settings
	Debug DebugConfig `json:"debug"`

	AppVersion string `json:"app_version"` // Application version, set at build time
}

// ServerConfig holds Web server configuration
type ServerConfig struct {
	WEB             *WebConfig
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	UpdateFile      string        `json:"update_file"` // presence triggers a graceful shutdown
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenHost string `json:"listen_host"`
	ListenPort int    `json:"listen_port"`
	Debug      bool   `json:"debug"` // gin debug mode and access log
}

// DebugConfig holds profiler settings
type DebugConfig struct {
	PprofAddr       string        `json:"pprof_addr,omitempty"` // empty disables the profiler
	MemProfileEvery time.Duration `json:"mem_profile_every"`
	MemProfileFor   time.Duration `json:"mem_profile_for"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Server: ServerConfig{
			WEB: &WebConfig{
				ListenHost: DefaultListenHost,
				ListenPort: DefaultListenPort,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
			UpdateFile:      DefaultUpdateFile,
		},
		Debug: DebugConfig{
			MemProfileEvery: 5 * time.Minute,
			MemProfileFor:   30 * time.Second,
		},
	}

	maincfg.mux.Lock()
	log.Printf("MainConfig initialized (version: %s)", maincfg.AppVersion)
	maincfg.mux.Unlock()
	return maincfg
}

// Validate checks the listener settings
func (c *WebConfig) Validate() error {
	if c == nil {
		return errors.New("web config is nil")
	}
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: %d (must be between 1 and 65535)", ErrInvalidPort, c.ListenPort)
	}
	if c.ListenHost != "" && net.ParseIP(c.ListenHost) == nil && !isHostname(c.ListenHost) {
		return fmt.Errorf("%w: %q", ErrInvalidHost, c.ListenHost)
	}
	return nil
}

// Addr returns host:port for net.Listen
func (c *WebConfig) Addr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.ListenPort))
}

// isHostname checks RFC 1123 label structure: 1-63 chars of [A-Za-z0-9-], no leading or trailing hyphen
func isHostname(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			default:
				return false
			}
		}
	}
	return true
}
