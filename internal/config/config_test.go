package config

import (
	"testing"
	"time"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultHost != "0.0.0.0" {
		t.Errorf("DefaultHost = %v, want '0.0.0.0'", DefaultHost)
	}
	if DefaultPort != 8080 {
		t.Errorf("DefaultPort = %v, want 8080", DefaultPort)
	}
	if DefaultLogLevel != "INFO" {
		t.Errorf("DefaultLogLevel = %v, want 'INFO'", DefaultLogLevel)
	}
	if DefaultVersionSubdir != "versions" {
		t.Errorf("DefaultVersionSubdir = %v, want 'versions'", DefaultVersionSubdir)
	}
	if DefaultAdminUsername != "admin" {
		t.Errorf("DefaultAdminUsername = %v, want 'admin'", DefaultAdminUsername)
	}
	if DefaultCacheTTL != 5*time.Minute {
		t.Errorf("DefaultCacheTTL = %v, want 5m", DefaultCacheTTL)
	}
	if DefaultCacheMaxEntries != 4096 {
		t.Errorf("DefaultCacheMaxEntries = %v, want 4096", DefaultCacheMaxEntries)
	}
	if DefaultSchedulerSpec != "@every 1m" {
		t.Errorf("DefaultSchedulerSpec = %v, want '@every 1m'", DefaultSchedulerSpec)
	}
}

func TestCacheConfig(t *testing.T) {
	cfg := NewCacheConfig()

	if cfg.Backend() != CacheBackendMemory {
		t.Errorf("Backend() = %v, want memory", cfg.Backend())
	}
	if cfg.TTL() != DefaultCacheTTL {
		t.Errorf("TTL() = %v, want %v", cfg.TTL(), DefaultCacheTTL)
	}
	if cfg.MaxEntries() != DefaultCacheMaxEntries {
		t.Errorf("MaxEntries() = %v, want %v", cfg.MaxEntries(), DefaultCacheMaxEntries)
	}
	if cfg.IsRedis() {
		t.Error("IsRedis() should be false by default")
	}

	cfg = cfg.WithBackend(CacheBackendRedis).
		WithRedisURL("redis://localhost:6379/0").
		WithTTL(time.Minute).
		WithMaxEntries(128)

	if cfg.Backend() != CacheBackendRedis {
		t.Errorf("Backend() = %v, want redis", cfg.Backend())
	}
	if cfg.RedisURL() != "redis://localhost:6379/0" {
		t.Errorf("RedisURL() = %v, want 'redis://localhost:6379/0'", cfg.RedisURL())
	}
	if cfg.TTL() != time.Minute {
		t.Errorf("TTL() = %v, want 1m", cfg.TTL())
	}
	if cfg.MaxEntries() != 128 {
		t.Errorf("MaxEntries() = %v, want 128", cfg.MaxEntries())
	}
	if !cfg.IsRedis() {
		t.Error("IsRedis() should be true when backend and URL are set")
	}
}

func TestCacheConfig_RedisWithoutURL(t *testing.T) {
	cfg := NewCacheConfig().WithBackend(CacheBackendRedis)

	if cfg.IsRedis() {
		t.Error("IsRedis() should be false without a redis URL")
	}
}

func TestSchedulerConfig(t *testing.T) {
	cfg := NewSchedulerConfig()

	if !cfg.Enabled() {
		t.Error("Enabled() should be true by default")
	}
	if cfg.Schedule() != DefaultSchedulerSpec {
		t.Errorf("Schedule() = %v, want %v", cfg.Schedule(), DefaultSchedulerSpec)
	}

	cfg = cfg.WithEnabled(false).WithSchedule("@every 30s")
	if cfg.Enabled() {
		t.Error("Enabled() should be false")
	}
	if cfg.Schedule() != "@every 30s" {
		t.Errorf("Schedule() = %v, want '@every 30s'", cfg.Schedule())
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.Host() != DefaultHost {
		t.Errorf("Host() = %v, want '%v'", cfg.Host(), DefaultHost)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %v, want %v", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %v, want '%v'", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.LogFormat() != LogFormatPretty {
		t.Errorf("LogFormat() = %v, want 'pretty'", cfg.LogFormat())
	}
	if cfg.AdminUsername() != DefaultAdminUsername {
		t.Errorf("AdminUsername() = %v, want '%v'", cfg.AdminUsername(), DefaultAdminUsername)
	}
	if cfg.Cache().Backend() != CacheBackendMemory {
		t.Errorf("Cache().Backend() = %v, want memory", cfg.Cache().Backend())
	}
	if !cfg.Scheduler().Enabled() {
		t.Error("Scheduler().Enabled() should be true by default")
	}
	if len(cfg.APIKeys()) != 0 {
		t.Errorf("APIKeys() length = %v, want 0", len(cfg.APIKeys()))
	}
}

func TestAppConfig_WithOptions(t *testing.T) {
	cacheConfig := NewCacheConfig().WithBackend(CacheBackendRedis).WithRedisURL("redis://cache:6379")
	schedulerConfig := NewSchedulerConfig().WithEnabled(false)

	cfg := NewAppConfigWithOptions(
		WithHost("127.0.0.1"),
		WithPort(9000),
		WithDataDir("/custom/data"),
		WithDBURL("postgres://localhost/doclink"),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithAPIKeys([]string{"key1", "key2"}),
		WithAdminUsername("root"),
		WithCacheConfig(cacheConfig),
		WithSchedulerConfig(schedulerConfig),
	)

	if cfg.Host() != "127.0.0.1" {
		t.Errorf("Host() = %v, want '127.0.0.1'", cfg.Host())
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port() = %v, want 9000", cfg.Port())
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %v, want '127.0.0.1:9000'", cfg.Addr())
	}
	if cfg.DataDir() != "/custom/data" {
		t.Errorf("DataDir() = %v, want '/custom/data'", cfg.DataDir())
	}
	if cfg.DBURL() != "postgres://localhost/doclink" {
		t.Errorf("DBURL() = %v, want 'postgres://localhost/doclink'", cfg.DBURL())
	}
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %v, want 'DEBUG'", cfg.LogLevel())
	}
	if cfg.LogFormat() != LogFormatJSON {
		t.Errorf("LogFormat() = %v, want 'json'", cfg.LogFormat())
	}
	if len(cfg.APIKeys()) != 2 {
		t.Errorf("APIKeys() length = %v, want 2", len(cfg.APIKeys()))
	}
	if cfg.AdminUsername() != "root" {
		t.Errorf("AdminUsername() = %v, want 'root'", cfg.AdminUsername())
	}
	if !cfg.Cache().IsRedis() {
		t.Error("Cache().IsRedis() should be true")
	}
	if cfg.Scheduler().Enabled() {
		t.Error("Scheduler().Enabled() should be false")
	}
}

func TestAppConfig_APIKeys_Copy(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithAPIKeys([]string{"key1"}))

	keys := cfg.APIKeys()
	keys[0] = "modified"

	if cfg.APIKeys()[0] == "modified" {
		t.Error("APIKeys() should return a copy")
	}
}

func TestAppConfig_Directories(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/data"))

	if cfg.VersionDir() != "/data/versions" {
		t.Errorf("VersionDir() = %v, want '/data/versions'", cfg.VersionDir())
	}
}

func TestAppConfig_DataDirUpdatesDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/custom"))

	// DB URL should be updated when only data dir is set
	expected := "sqlite:////custom/doclink.db"
	if cfg.DBURL() != expected {
		t.Errorf("DBURL() = %v, want %v", cfg.DBURL(), expected)
	}
}

func TestAppConfig_ExplicitDBURLSurvivesDataDir(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithDBURL("postgres://localhost/doclink"),
		WithDataDir("/custom"),
	)

	if cfg.DBURL() != "postgres://localhost/doclink" {
		t.Errorf("DBURL() = %v, want 'postgres://localhost/doclink'", cfg.DBURL())
	}
}

func TestAppConfig_EmptyAdminUsernameIgnored(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithAdminUsername(""))

	if cfg.AdminUsername() != DefaultAdminUsername {
		t.Errorf("AdminUsername() = %v, want '%v'", cfg.AdminUsername(), DefaultAdminUsername)
	}
}

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single key",
			input:    "key1",
			expected: []string{"key1"},
		},
		{
			name:     "multiple keys",
			input:    "key1,key2,key3",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "with whitespace",
			input:    "key1 , key2 , key3",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "with empty entries",
			input:    "key1,,key2",
			expected: []string{"key1", "key2"},
		},
		{
			name:     "whitespace only entries",
			input:    "key1,  ,key2",
			expected: []string{"key1", "key2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseAPIKeys(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("ParseAPIKeys(%q) length = %v, want %v", tt.input, len(result), len(tt.expected))
				return
			}
			for i, v := range result {
				if v != tt.expected[i] {
					t.Errorf("ParseAPIKeys(%q)[%d] = %v, want %v", tt.input, i, v, tt.expected[i])
				}
			}
		})
	}
}
