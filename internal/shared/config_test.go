package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./flickx.db" {
			t.Errorf("expected database path ./flickx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.TMDB.BaseURL != "https://api.themoviedb.org/3" {
			t.Errorf("expected TMDB base URL https://api.themoviedb.org/3, got %s", config.TMDB.BaseURL)
		}

		if config.TMDB.HasCredentials() {
			t.Error("default config should not carry credentials")
		}

		if !config.Session.Persist {
			t.Error("expected session persistence to default to true")
		}

		if got := config.Session.LoginDelay(); got != 500*time.Millisecond {
			t.Errorf("expected login delay 500ms, got %v", got)
		}

		if got := config.TMDB.Timeout(); got != 10*time.Second {
			t.Errorf("expected timeout 10s, got %v", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[session]
persist = false
login_delay_ms = 0

[tmdb]
api_key = "test_api_key"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Session.Persist {
			t.Error("expected session persistence to be disabled")
		}

		if config.TMDB.APIKey != "test_api_key" {
			t.Errorf("expected api key test_api_key, got %s", config.TMDB.APIKey)
		}

		if config.TMDB.ImageBaseURL != "https://image.tmdb.org/t/p/w500" {
			t.Errorf("expected image base URL to keep its default, got %s", config.TMDB.ImageBaseURL)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{EnvAPIKey: "from-env", EnvAccessToken: "token-from-env"}

		config.ApplyEnv(func(k string) string { return env[k] })

		if config.TMDB.APIKey != "from-env" {
			t.Errorf("expected api key from env, got %s", config.TMDB.APIKey)
		}
		if config.TMDB.AccessToken != "token-from-env" {
			t.Errorf("expected access token from env, got %s", config.TMDB.AccessToken)
		}
		if !config.TMDB.HasCredentials() {
			t.Error("expected credentials after ApplyEnv")
		}
	})

	t.Run("ApplyEnv Leaves Values When Unset", func(t *testing.T) {
		config := DefaultConfig()
		config.TMDB.APIKey = "file-key"

		config.ApplyEnv(func(string) string { return "" })

		if config.TMDB.APIKey != "file-key" {
			t.Errorf("expected file key to survive, got %s", config.TMDB.APIKey)
		}
	})
}
