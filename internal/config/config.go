package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Index    IndexConfig    `mapstructure:"index"`
	Server   ServerConfig   `mapstructure:"server"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type IndexConfig struct {
	Path string `mapstructure:"path"`

	// PropagateEdits makes article edits and deletes update the index.
	// When false they only log that the index is now stale.
	PropagateEdits bool `mapstructure:"propagate_edits"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`

	// AdminToken guards /admin endpoints. Empty disables them.
	AdminToken string `mapstructure:"admin_token"`
}

type ImportConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	SectionID   string        `mapstructure:"section_id"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type ArticleConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".forumsearch")

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(dataDir, "forum.db"),
			Timeout: 1 * time.Second,
		},
		Index: IndexConfig{
			Path:           filepath.Join(dataDir, "search_index"),
			PropagateEdits: false,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			QueryTimeout: 5 * time.Second,
		},
		Import: ImportConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "forumsearch/1.0",
			SectionID:   "imported",
		},
		Log: LogConfig{
			Level: "INFO",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Article: ArticleConfig{
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
	}
}

// settings flattens cfg into viper keys. Durations are written as strings so
// saved files stay readable.
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"database.path":         cfg.Database.Path,
		"database.timeout":      cfg.Database.Timeout.String(),
		"index.path":            cfg.Index.Path,
		"index.propagate_edits": cfg.Index.PropagateEdits,
		"server.addr":           cfg.Server.Addr,
		"server.read_timeout":   cfg.Server.ReadTimeout.String(),
		"server.write_timeout":  cfg.Server.WriteTimeout.String(),
		"server.query_timeout":  cfg.Server.QueryTimeout.String(),
		"server.admin_token":    cfg.Server.AdminToken,
		"import.http_timeout":   cfg.Import.HTTPTimeout.String(),
		"import.user_agent":     cfg.Import.UserAgent,
		"import.section_id":     cfg.Import.SectionID,
		"log.level":             cfg.Log.Level,
		"log.file":              cfg.Log.File,
		"ui.colors.primary":     cfg.UI.Colors.Primary,
		"ui.colors.secondary":   cfg.UI.Colors.Secondary,
		"ui.colors.accent":      cfg.UI.Colors.Accent,
		"ui.colors.text":        cfg.UI.Colors.Text,
		"ui.colors.muted":       cfg.UI.Colors.Muted,
		"ui.colors.error":       cfg.UI.Colors.Error,
		"ui.colors.success":     cfg.UI.Colors.Success,

		"ui.article.word_wrap_max_width": cfg.UI.Article.WordWrapMaxWidth,
		"ui.article.word_wrap_min_width": cfg.UI.Article.WordWrapMinWidth,
	}
}

// DefaultPath is where Load looks when no explicit file is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "forumsearch", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range settings(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FORUMSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand paths after loading
	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Index.Path = expandPath(cfg.Index.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()
	for key, value := range settings(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
