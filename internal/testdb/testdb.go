// Package testdb opens a migrated in-memory database for tests and
// provides small fixture builders.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"practice-service/internal/model"
	"practice-service/pkg/database"
)

// Open returns a fresh, migrated in-memory database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := database.MigrateModels(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Fixtures creates rows directly, bypassing the services.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
	n  int
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) create(v interface{}) {
	f.t.Helper()
	if err := f.db.Create(v).Error; err != nil {
		f.t.Fatalf("create %T: %v", v, err)
	}
}

// User creates an active user with the given role and password "secret123".
func (f *Fixtures) User(email string, role model.UserRole) *model.User {
	f.t.Helper()
	u := &model.User{Email: model.NormalizeEmail(email), FullName: email, Role: role, IsActive: true}
	if err := u.SetPassword("secret123"); err != nil {
		f.t.Fatalf("set password: %v", err)
	}
	f.create(u)
	return u
}

// Workspace creates a workspace owned by owner. Creation times are
// spaced a second apart so resolution order is deterministic.
func (f *Fixtures) Workspace(owner *model.User, slug string) *model.Workspace {
	f.t.Helper()
	f.n++
	ws := &model.Workspace{
		OwnerID:   owner.ID,
		Name:      slug,
		Slug:      slug,
		Niche:     model.NicheOther,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, f.n, 0, time.UTC),
	}
	f.create(ws)
	return ws
}

func (f *Fixtures) Member(ws *model.Workspace, user *model.User, role model.MemberRole, active bool) *model.WorkspaceMember {
	f.t.Helper()
	m := &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID, Role: role, IsActive: active}
	f.create(m)
	return m
}

func (f *Fixtures) Client(ws *model.Workspace, name, email string) *model.Client {
	f.t.Helper()
	cl := &model.Client{WorkspaceID: ws.ID, FullName: name, Email: model.NormalizeEmail(email), IsActive: true}
	f.create(cl)
	return cl
}

// PortalClient creates a client already linked to portal user u.
func (f *Fixtures) PortalClient(ws *model.Workspace, u *model.User) *model.Client {
	f.t.Helper()
	cl := &model.Client{WorkspaceID: ws.ID, FullName: u.FullName, Email: u.Email, PortalUserID: &u.ID, IsActive: true}
	f.create(cl)
	return cl
}

func (f *Fixtures) Service(ws *model.Workspace, minutes int) *model.Service {
	f.t.Helper()
	f.n++
	s := &model.Service{WorkspaceID: ws.ID, Name: fmt.Sprintf("service-%d", f.n), DefaultDurationMinutes: minutes, Price: "50.00", IsActive: true}
	f.create(s)
	return s
}

func (f *Fixtures) CaseFile(ws *model.Workspace, cl *model.Client, title string) *model.CaseFile {
	f.t.Helper()
	f.n++
	cf := &model.CaseFile{
		WorkspaceID: ws.ID,
		ClientID:    cl.ID,
		Title:       title,
		Status:      model.CaseOpen,
		OpenedAt:    time.Date(2024, 2, 1, 0, 0, f.n, 0, time.UTC),
	}
	f.create(cf)
	return cf
}

func (f *Fixtures) Event(cf *model.CaseFile, title string, visible bool) *model.CaseEvent {
	f.t.Helper()
	f.n++
	ev := &model.CaseEvent{
		WorkspaceID:     cf.WorkspaceID,
		CaseFileID:      cf.ID,
		EventType:       model.DefaultEventType,
		Title:           title,
		HappenedAt:      time.Date(2024, 3, 1, 0, 0, f.n, 0, time.UTC),
		VisibleToClient: visible,
	}
	f.create(ev)
	return ev
}

func (f *Fixtures) Attachment(ev *model.CaseEvent, name string, private bool) *model.CaseAttachment {
	f.t.Helper()
	f.n++
	a := &model.CaseAttachment{
		WorkspaceID:  ev.WorkspaceID,
		CaseFileID:   ev.CaseFileID,
		EventID:      ev.ID,
		StorageKey:   "attachments/2024/03/" + name,
		OriginalName: name,
		MimeType:     "text/plain",
		SizeBytes:    4,
		UploadedAt:   time.Date(2024, 3, 2, 0, 0, f.n, 0, time.UTC),
		IsPrivate:    private,
	}
	f.create(a)
	return a
}
