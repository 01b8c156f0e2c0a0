package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func isolatedLoader(t *testing.T) *Loader {
	t.Helper()
	loader := NewLoader()
	loader.configPaths = []string{filepath.Join(t.TempDir(), "missing.yaml")}
	return loader
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := isolatedLoader(t).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.Endpoint.Port != 8000 {
		t.Errorf("Expected default port 8000, got %d", cfg.Endpoint.Port)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
endpoint:
  origin_host: "lab.example.com"
  service_host: "detector"
  port: 9000
  timeout: 45s
decode:
  strict: true
output:
  default_format: "json"
  verbose: true
storage:
  history_enabled: false
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := NewLoader().LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Endpoint.ServiceHost != "detector" {
		t.Errorf("Expected service host detector, got %s", cfg.Endpoint.ServiceHost)
	}
	if cfg.Endpoint.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Endpoint.Port)
	}
	if cfg.Endpoint.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %v", cfg.Endpoint.Timeout)
	}
	if !cfg.Decode.Strict {
		t.Errorf("Expected strict decoding")
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Storage.HistoryEnabled {
		t.Errorf("Expected history to be disabled by the file")
	}

	// keys absent from the file keep their defaults
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected debounce to remain 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Server.MetricsPath != "/metrics" {
		t.Errorf("Expected metrics path to remain /metrics, got %s", cfg.Server.MetricsPath)
	}
	if got := ResolveBaseURL(cfg.Endpoint); got != "http://detector:9000" {
		t.Errorf("Expected resolved base http://detector:9000, got %s", got)
	}
}

func TestLoadConfigPriority(t *testing.T) {
	tempDir := t.TempDir()
	system := filepath.Join(tempDir, "system.yaml")
	project := filepath.Join(tempDir, "project.yaml")

	if err := os.WriteFile(system, []byte("endpoint:\n  port: 7000\n  service_host: sys\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project, []byte("endpoint:\n  port: 7100\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	loader.configPaths = []string{project, filepath.Join(tempDir, "absent.yaml"), system}

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Endpoint.Port != 7100 {
		t.Errorf("Expected project port 7100 to win, got %d", cfg.Endpoint.Port)
	}
	if cfg.Endpoint.ServiceHost != "sys" {
		t.Errorf("Expected system service host to survive, got %s", cfg.Endpoint.ServiceHost)
	}
}

func TestLoadConfigBrokenFileIsSkipped(t *testing.T) {
	tempDir := t.TempDir()
	broken := filepath.Join(tempDir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("endpoint: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}

	var warnings []string
	loader := NewLoader()
	loader.configPaths = []string{broken}
	loader.warn = func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	}

	if _, err := loader.LoadConfig(""); err != nil {
		t.Fatalf("Broken search-path file should only warn, got %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("Expected one warning, got %d", len(warnings))
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
endpoint:
  port: 8000
  # Invalid YAML - missing closing quote
output:
  default_format: "json
  verbose: true
`

	if err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	if _, err := NewLoader().LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  default_format: xml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader().LoadConfig(configPath)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LOGDETECT_ENDPOINT_BASE_URL", "https://detect.example.com")
	t.Setenv("LOGDETECT_ENDPOINT_PORT", "9443")
	t.Setenv("LOGDETECT_ENDPOINT_TIMEOUT", "2m")
	t.Setenv("LOGDETECT_UPLOAD_MAX_FILE_SIZE", "1024")
	t.Setenv("LOGDETECT_DECODE_STRICT", "true")
	t.Setenv("LOGDETECT_OUTPUT_VERBOSE", "true")
	t.Setenv("LOGDETECT_WATCH_DEBOUNCE", "1s")
	t.Setenv("LOGDETECT_STORAGE_HISTORY_ENABLED", "false")
	t.Setenv("LOGDETECT_SERVER_ADDR", "0.0.0.0:9090")

	loader := NewLoader()
	cfg := DefaultConfig()

	if err := loader.applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Endpoint.BaseURL != "https://detect.example.com" {
		t.Errorf("Expected base URL override, got %s", cfg.Endpoint.BaseURL)
	}
	if cfg.Endpoint.Port != 9443 {
		t.Errorf("Expected port 9443, got %d", cfg.Endpoint.Port)
	}
	if cfg.Endpoint.Timeout != 2*time.Minute {
		t.Errorf("Expected timeout 2m, got %v", cfg.Endpoint.Timeout)
	}
	if cfg.Upload.MaxFileSize != 1024 {
		t.Errorf("Expected max file size 1024, got %d", cfg.Upload.MaxFileSize)
	}
	if !cfg.Decode.Strict {
		t.Errorf("Expected strict decoding")
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Storage.HistoryEnabled {
		t.Errorf("Expected history to be disabled")
	}
	if cfg.Server.Addr != "0.0.0.0:9090" {
		t.Errorf("Expected server addr override, got %s", cfg.Server.Addr)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "LOGDETECT_ENDPOINT_PORT", "not-a-number"},
		{"invalid int64", "LOGDETECT_UPLOAD_MAX_FILE_SIZE", "huge"},
		{"invalid bool", "LOGDETECT_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "LOGDETECT_ENDPOINT_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			err := NewLoader().applyEnvOverrides(DefaultConfig())
			if err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	var duration time.Duration

	if err := parseDuration("30s", &duration); err != nil {
		t.Errorf("Failed to parse duration: %v", err)
	}
	if duration != 30*time.Second {
		t.Errorf("Expected 30s, got %v", duration)
	}

	if err := parseDuration("invalid", &duration); err == nil {
		t.Error("Expected error for invalid duration, but got none")
	}
}

func TestParseInt(t *testing.T) {
	var value int

	if err := parseInt("42", &value); err != nil {
		t.Errorf("Failed to parse int: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}

	if err := parseInt("not-a-number", &value); err == nil {
		t.Error("Expected error for invalid int, but got none")
	}
}

func TestParseBool(t *testing.T) {
	var value bool

	if err := parseBool("true", &value); err != nil {
		t.Errorf("Failed to parse bool: %v", err)
	}
	if !value {
		t.Errorf("Expected true, got %v", value)
	}

	if err := parseBool("not-a-bool", &value); err == nil {
		t.Error("Expected error for invalid bool, but got none")
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	tempFile := filepath.Join(t.TempDir(), "test-file")
	if err := os.WriteFile(tempFile, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid yaml file",
			path:    "config.yaml",
			wantErr: false,
		},
		{
			name:    "valid yml file",
			path:    "config.yml",
			wantErr: false,
		},
		{
			name:    "path traversal attempt",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "non-yaml file",
			path:    "config.txt",
			wantErr: true,
			errMsg:  "config file must have .yaml or .yml extension",
		},
		{
			name:    "system file access",
			path:    "/etc/passwd.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name:    "proc filesystem access",
			path:    "/proc/version.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name:    "relative path with valid extension",
			path:    "./configs/app.yaml",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func TestSampleConfigsParse(t *testing.T) {
	for name, content := range map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sample.yaml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := NewLoader().LoadConfig(path)
			if err != nil {
				t.Fatalf("Sample config does not load: %v", err)
			}
			if got := ResolveBaseURL(cfg.Endpoint); got != "http://localhost:8000" {
				t.Errorf("Sample config should resolve to localhost, got %s", got)
			}
		})
	}
}
