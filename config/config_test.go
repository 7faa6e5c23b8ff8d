package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreDriverPostgres || cfg.PasswordHasher != "bcrypt" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.CacheTTL != time.Minute || cfg.RabbitMQEventsQueue != "user-events" {
		t.Errorf("cache ttl = %v, queue = %q", cfg.CacheTTL, cfg.RabbitMQEventsQueue)
	}
	if cfg.RedisAddr != "" || cfg.CacheKeyPrefix != "identity:user:" {
		t.Errorf("redis addr = %q, prefix = %q; the cache must be opt-in", cfg.RedisAddr, cfg.CacheKeyPrefix)
	}
	if len(cfg.ElasticsearchAddrs) != 1 || len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("es = %v, cors = %v", cfg.ElasticsearchAddrs, cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/u.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("MAIL_SEND_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StoreDriverSQLite || cfg.SQLitePath != "/tmp/u.db" {
		t.Errorf("store = %q %q", cfg.StoreDriver, cfg.SQLitePath)
	}
	if got := cfg.CORSAllowedOrigins; len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("cors = %v", got)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.DBMaxConns != 25 || cfg.MailSendEnabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("USER_CACHE_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	if got, want := cfg.PostgresDSN(), "postgres://u:p@h:5432/d?sslmode=disable"; got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
