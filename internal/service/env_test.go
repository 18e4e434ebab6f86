package service_test

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/clock"
	"practice-service/internal/service"
	"practice-service/internal/storage"
	"practice-service/internal/tenancy"
	"practice-service/internal/testdb"
	"practice-service/pkg/jwtutil"
)

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	db       *gorm.DB
	fx       *testdb.Fixtures
	clock    *clock.Fake
	jwt      *jwtutil.JWTUtil
	store    *storage.LocalStore
	resolver *tenancy.Resolver

	auth          *service.AuthService
	workspaces    *service.WorkspaceService
	clients       *service.ClientService
	invitations   *service.InvitationService
	catalog       *service.CatalogService
	appointments  *service.AppointmentService
	consultations *service.ConsultationService
	casefiles     *service.CaseFileService
	portal        *service.PortalService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	db := testdb.Open(t)
	clk := clock.NewFake(epoch)
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:        "test-key",
		AccessExpiration:  time.Hour,
		RefreshExpiration: 24 * time.Hour,
	})
	store := storage.NewLocalStore(t.TempDir(), "http://files.test/media", clk, log)
	resolver := tenancy.NewResolver(db, log)

	return &env{
		db:       db,
		fx:       testdb.NewFixtures(t, db),
		clock:    clk,
		jwt:      jwt,
		store:    store,
		resolver: resolver,

		auth:          service.NewAuthService(db, jwt, log),
		workspaces:    service.NewWorkspaceService(db, resolver, log),
		clients:       service.NewClientService(db, resolver, log),
		invitations:   service.NewInvitationService(db, resolver, jwt, clk, 7*24*time.Hour, "http://app.test", log),
		catalog:       service.NewCatalogService(db, resolver, log),
		appointments:  service.NewAppointmentService(db, resolver, log),
		consultations: service.NewConsultationService(db, resolver, log),
		casefiles:     service.NewCaseFileService(db, resolver, store, clk, 1<<20, log),
		portal:        service.NewPortalService(db, resolver, store, log),
	}
}

func ptr[T any](v T) *T { return &v }
