package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_StorageDriver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		addrs   []string
		wantErr string
	}{
		{"memory without addrs", "memory", nil, ""},
		{"redis with addrs", "redis", []string{"localhost:6379"}, ""},
		{"valkey with addrs", "valkey", []string{"localhost:6379"}, ""},
		{"redis without addrs", "redis", nil, `storage.addrs is required for driver "redis"`},
		{"unknown driver", "etcd", nil, `storage.driver must be "memory", "redis" or "valkey", got "etcd"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage.Driver = tt.driver
			cfg.Storage.Addrs = tt.addrs

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("unexpected error:\ngot:  %v\nwant: %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("level %q: unexpected error %v", level, err)
		}
	}

	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.SearchWorkers = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative search workers")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.HTTP.MaxUploadBytes != 10<<20 {
		t.Errorf("expected MaxUploadBytes=10MiB, got %d", cfg.HTTP.MaxUploadBytes)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("expected Driver=memory, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "teammaker:" {
		t.Errorf("expected KeyPrefix='teammaker:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.TableTTLSec != 1800 {
		t.Errorf("expected TableTTLSec=1800, got %d", cfg.Storage.TableTTLSec)
	}
	if cfg.Storage.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Storage.ReadinessTimeout)
	}
	if cfg.Engine.MaxTrialBudget != 10000 {
		t.Errorf("expected MaxTrialBudget=10000, got %d", cfg.Engine.MaxTrialBudget)
	}
	if cfg.Engine.SwapEvery != 10 {
		t.Errorf("expected SwapEvery=10, got %d", cfg.Engine.SwapEvery)
	}
	if cfg.Engine.SearchWorkers != 0 || cfg.Engine.Seed != 0 {
		t.Errorf("expected zero workers and seed, got %d, %d", cfg.Engine.SearchWorkers, cfg.Engine.Seed)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage: StorageConfig{Driver: "redis", KeyPrefix: "custom:", TableTTLSec: 60},
		Engine:  EngineConfig{MaxTrialBudget: 500, SwapEvery: 4},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.KeyPrefix != "custom:" || cfg.Storage.TableTTLSec != 60 {
		t.Errorf("storage overridden: %+v", cfg.Storage)
	}
	if cfg.Engine.MaxTrialBudget != 500 || cfg.Engine.SwapEvery != 4 {
		t.Errorf("engine overridden: %+v", cfg.Engine)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("TM_PORT", "9090")
	t.Setenv("TM_KEYS", "")

	data := []byte(`
http:
  port: ${TM_PORT}
storage:
  driver: ${TM_DRIVER:-memory}
auth:
  api_keys: ["${TM_KEYS:-dev-key}"]
engine:
  seed: 42
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Storage.Driver)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "dev-key" {
		t.Errorf("api keys = %v, want [dev-key]", cfg.Auth.APIKeys)
	}
	if cfg.Engine.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Engine.Seed)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("malformed yaml: err = %v", err)
	}
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("invalid port: err = %v", err)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Storage.Driver == "" || cfg.HTTP.Port == 0 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
