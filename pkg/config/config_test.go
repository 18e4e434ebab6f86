package config_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"gorm.io/gorm/logger"

	"practice-service/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Port, qt.Equals, "8080")
	c.Assert(cfg.JWT.AccessExpiration, qt.Equals, time.Hour)
	c.Assert(cfg.JWT.RefreshExpiration, qt.Equals, 7*24*time.Hour)
	c.Assert(cfg.Invitation.TTL, qt.Equals, 7*24*time.Hour)
	c.Assert(cfg.Storage.MaxUploadBytes, qt.Equals, int64(25<<20))
}

func TestLoadOverrides(t *testing.T) {
	c := qt.New(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INVITATION_TTL", "48h")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Port, qt.Equals, "9090")
	c.Assert(cfg.Invitation.TTL, qt.Equals, 48*time.Hour)
	c.Assert(cfg.DB.LogLevel, qt.Equals, logger.Silent)
	c.Assert(cfg.DB.MaxOpenConns, qt.Equals, 100)
	c.Assert(cfg.Server.FrontendURL, qt.Equals, "https://app.example.com")
}

func TestLoadRejectsDefaultKeyInProduction(t *testing.T) {
	c := qt.New(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SIGNING_KEY", "practicesecretkey")

	_, err := config.Load()
	c.Assert(err, qt.ErrorMatches, "JWT_SIGNING_KEY must be set in production")
}

func TestGetDSN(t *testing.T) {
	c := qt.New(t)
	db := config.DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "practice", SSLMode: "disable"}
	c.Assert(db.GetDSN(), qt.Equals, "host=db port=5432 user=u password=p dbname=practice sslmode=disable TimeZone=UTC")
}
