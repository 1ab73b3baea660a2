package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	os.Clearenv()
	os.Setenv("BOT_TOKEN", "test_bot_token")
	os.Setenv("LEDGER_FILE", "/tmp/scores.json")
	os.Setenv("LEADERBOARD_SIZE", "5")
	defer os.Clearenv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.BotToken != "test_bot_token" {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, "test_bot_token")
	}
	if cfg.LedgerBackend != LedgerBackendFile {
		t.Errorf("LedgerBackend = %q, want %q", cfg.LedgerBackend, LedgerBackendFile)
	}
	if cfg.LedgerFile != "/tmp/scores.json" {
		t.Errorf("LedgerFile = %q, want %q", cfg.LedgerFile, "/tmp/scores.json")
	}
	if cfg.LeaderboardSize != 5 {
		t.Errorf("LeaderboardSize = %d, want 5", cfg.LeaderboardSize)
	}
	if cfg.QuestionsFile != "soal.txt" {
		t.Errorf("QuestionsFile = %q, want soal.txt", cfg.QuestionsFile)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Missing BOT_TOKEN",
			envVars: map[string]string{},
		},
		{
			name: "Unknown backend",
			envVars: map[string]string{
				"BOT_TOKEN":      "token",
				"LEDGER_BACKEND": "mongo",
			},
		},
		{
			name: "Postgres without password",
			envVars: map[string]string{
				"BOT_TOKEN":      "token",
				"LEDGER_BACKEND": "postgres",
			},
		},
		{
			name: "Zero leaderboard size",
			envVars: map[string]string{
				"BOT_TOKEN":        "token",
				"LEADERBOARD_SIZE": "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			defer os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}

func TestValidateStorage_NoTokenNeeded(t *testing.T) {
	cfg := &Config{
		LedgerBackend:        LedgerBackendRedis,
		RedisAddr:            "localhost:6379",
		LeaderboardSize:      10,
		RolloverCheckMinutes: 60,
		WorkerCount:          4,
	}

	if err := cfg.ValidateStorage(); err != nil {
		t.Errorf("ValidateStorage() unexpected error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error without BOT_TOKEN, got nil")
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "Valid production postgres config",
			cfg: &Config{
				AppEnv:           "production",
				LedgerBackend:    LedgerBackendPostgres,
				DBSSLMode:        "require",
				RateLimitPerUser: 20,
			},
			shouldErr: false,
		},
		{
			name: "Development mode - no validation",
			cfg: &Config{
				AppEnv:        "development",
				LedgerBackend: LedgerBackendPostgres,
				DBSSLMode:     "disable",
			},
			shouldErr: false,
		},
		{
			name: "Production postgres without SSL",
			cfg: &Config{
				AppEnv:           "production",
				LedgerBackend:    LedgerBackendPostgres,
				DBSSLMode:        "disable",
				RateLimitPerUser: 20,
			},
			shouldErr: true,
		},
		{
			name: "Production file backend ignores SSL",
			cfg: &Config{
				AppEnv:           "production",
				LedgerBackend:    LedgerBackendFile,
				DBSSLMode:        "disable",
				RateLimitPerUser: 20,
			},
			shouldErr: false,
		},
		{
			name: "Production without rate limit",
			cfg: &Config{
				AppEnv:        "production",
				LedgerBackend: LedgerBackendFile,
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateProductionSecurity()
			if tt.shouldErr && err == nil {
				t.Error("ValidateProductionSecurity() expected error, got nil")
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("ValidateProductionSecurity() unexpected error = %v", err)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "testuser",
		DBPassword: "testpass",
		DBName:     "testdb",
		DBSSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn := cfg.GetDSN(); dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{RolloverCheckMinutes: 60, RateLimitWindowSecs: 30}

	if got := cfg.GetRolloverInterval(); got != time.Hour {
		t.Errorf("GetRolloverInterval() = %v, want %v", got, time.Hour)
	}
	if got := cfg.GetRateLimitWindow(); got != 30*time.Second {
		t.Errorf("GetRateLimitWindow() = %v, want %v", got, 30*time.Second)
	}
}
