package config

import "time"

// TestConfig returns a config suitable for testing. Paths are left empty so
// callers point them at a temporary directory; an empty index path gives an
// in-memory index.
func TestConfig() *Config {
	def := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Timeout: 1 * time.Second,
		},
		Index: IndexConfig{
			PropagateEdits: true,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			QueryTimeout: 2 * time.Second,
			AdminToken:   "test-token",
		},
		Import: ImportConfig{
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "forumsearch-test/1.0",
			SectionID:   "test",
		},
		Log: LogConfig{
			Level: "OFF",
		},
		UI: def.UI,
	}
}
