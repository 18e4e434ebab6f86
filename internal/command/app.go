package command

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/clock"
	"practice-service/internal/handler"
	"practice-service/internal/service"
	"practice-service/internal/storage"
	"practice-service/internal/tenancy"
	"practice-service/pkg/config"
	"practice-service/pkg/database"
	"practice-service/pkg/jwtutil"
	"practice-service/pkg/logger"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	jwt *jwtutil.JWTUtil
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:        cfg.JWT.SigningKey,
		AccessExpiration:  cfg.JWT.AccessExpiration,
		RefreshExpiration: cfg.JWT.RefreshExpiration,
	})

	return &app{cfg: cfg, log: log, db: db, jwt: jwt}, nil
}

func (a *app) services() handler.Services {
	clk := clock.Real()
	store := storage.NewLocalStore(a.cfg.Storage.Root, a.cfg.Storage.BaseURL, clk, a.log)
	resolver := tenancy.NewResolver(a.db, a.log)

	return handler.Services{
		Resolver:      resolver,
		Auth:          service.NewAuthService(a.db, a.jwt, a.log),
		Workspaces:    service.NewWorkspaceService(a.db, resolver, a.log),
		Clients:       service.NewClientService(a.db, resolver, a.log),
		Invitations:   service.NewInvitationService(a.db, resolver, a.jwt, clk, a.cfg.Invitation.TTL, a.cfg.Server.FrontendURL, a.log),
		Catalog:       service.NewCatalogService(a.db, resolver, a.log),
		Appointments:  service.NewAppointmentService(a.db, resolver, a.log),
		Consultations: service.NewConsultationService(a.db, resolver, a.log),
		CaseFiles:     service.NewCaseFileService(a.db, resolver, store, clk, a.cfg.Storage.MaxUploadBytes, a.log),
		Portal:        service.NewPortalService(a.db, resolver, store, a.log),
	}
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
