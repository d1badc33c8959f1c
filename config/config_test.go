package config

import (
	"testing"
	"time"
)

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("SERVER_PORT", ":18080")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "user-secret")
	t.Setenv("JWT_ADMIN_SECRET", "admin-secret")
	t.Setenv("USER_TOKEN_TTL", "48h")
	t.Setenv("ADMIN_TOKEN_TTL_SECONDS", "3600")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("STORAGE_DRIVER", "minio")

	cfg := LoadConfig()
	if cfg.ServerPort != ":18080" {
		t.Fatalf("expected SERVER_PORT override, got %s", cfg.ServerPort)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected lowercased DB_DRIVER, got %s", cfg.DBDriver)
	}
	if cfg.UserTokenTTL != 48*time.Hour {
		t.Fatalf("expected USER_TOKEN_TTL 48h, got %s", cfg.UserTokenTTL)
	}
	if cfg.AdminTokenTTL != time.Hour {
		t.Fatalf("expected ADMIN_TOKEN_TTL 1h, got %s", cfg.AdminTokenTTL)
	}
	if cfg.BcryptCost != 4 {
		t.Fatalf("expected BCRYPT_COST 4, got %d", cfg.BcryptCost)
	}
	if !cfg.SecureCookies {
		t.Fatalf("expected secure cookies in prod")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("USER_TOKEN_TTL", "")
	t.Setenv("ADMIN_TOKEN_TTL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg := LoadConfig()
	if cfg.UserTokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day user ttl, got %s", cfg.UserTokenTTL)
	}
	if cfg.AdminTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h admin ttl, got %s", cfg.AdminTokenTTL)
	}
	if cfg.StorageDriver != "local" {
		t.Fatalf("expected local storage, got %s", cfg.StorageDriver)
	}
	if cfg.MaxUploadBytes != 2*1024*1024 {
		t.Fatalf("expected 2MB upload cap, got %d", cfg.MaxUploadBytes)
	}
}

func TestValidate(t *testing.T) {
	base := Config{UserSecret: "u", AdminSecret: "a", NikPepper: "p", StorageDriver: "local"}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	same := base
	same.AdminSecret = "u"
	if err := same.Validate(); err == nil {
		t.Fatalf("expected error when both scopes share a secret")
	}

	missing := base
	missing.AdminSecret = ""
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected error for missing admin secret")
	}

	badStorage := base
	badStorage.StorageDriver = "ftp"
	if err := badStorage.Validate(); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}
