package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/spf13/viper"
)

type config struct {
	Addr       string `yaml:"addr" mapstructure:"addr"`
	DBPath     string `yaml:"db_path" mapstructure:"db_path"`
	TablesFile string `yaml:"tables_file" mapstructure:"tables_file"`
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`
	Transport  string `yaml:"transport" mapstructure:"transport"`
	Workers    int    `yaml:"workers" mapstructure:"workers"`
	// MCPAddr is the UDP address of a standalone MCP-over-QUIC listener for
	// the http transport. Empty disables it.
	MCPAddr string `yaml:"mcp_addr" mapstructure:"mcp_addr"`

	TLS struct {
		CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
		KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
	} `yaml:"tls" mapstructure:"tls"`

	RateLimit struct {
		RPS   float64       `yaml:"rps" mapstructure:"rps"`
		Burst int           `yaml:"burst" mapstructure:"burst"`
		Idle  time.Duration `yaml:"idle" mapstructure:"idle"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`

	Cache struct {
		TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	} `yaml:"cache" mapstructure:"cache"`

	Detect struct {
		DirectMappings bool `yaml:"direct_mappings" mapstructure:"direct_mappings"`
	} `yaml:"detect" mapstructure:"detect"`

	Sources struct {
		// CheckInterval of the import source checker; zero disables it.
		CheckInterval time.Duration `yaml:"check_interval" mapstructure:"check_interval"`
	} `yaml:"sources" mapstructure:"sources"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8420")
	v.SetDefault("db_path", "socialconnect.db")
	v.SetDefault("tables_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("transport", "http")
	v.SetDefault("workers", 0)
	v.SetDefault("mcp_addr", "")
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.idle", 5*time.Minute)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("detect.direct_mappings", false)
	v.SetDefault("sources.check_interval", time.Duration(0))
}

func loadConfig(v *viper.Viper) (config, error) {
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.Transport {
	case "http", "chassis":
	default:
		return cfg, fmt.Errorf("unknown transport %q (want http or chassis)", cfg.Transport)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// env bundles what every command needs.
type env struct {
	cfg    config
	logger *slog.Logger
}

func setup() (*env, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) openStore() (*store.Store, error) {
	st, err := store.Open(e.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("store opened", "path", e.cfg.DBPath)
	return st, nil
}

func (e *env) loadRegistry() (*catalog.Registry, error) {
	reg := catalog.NewRegistry(catalog.Options{
		Path:           e.cfg.TablesFile,
		DirectMappings: e.cfg.Detect.DirectMappings,
		CacheTTL:       e.cfg.Cache.TTL,
	})
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	info := reg.Info()
	e.logger.Debug("tables loaded",
		"version", info.Version,
		"sectors", len(info.Sectors),
		"problematiques", info.Problematiques,
		"actions", info.Actions,
	)
	return reg, nil
}

func (e *env) loadCatalog() (*catalog.Catalog, error) {
	if e.cfg.TablesFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(e.cfg.TablesFile)
}
