package model_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"practice-service/internal/model"
)

func TestNormalizeCaseStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    model.CaseStatus
		wantErr bool
	}{
		{name: "canonical open", raw: "open", want: model.CaseOpen},
		{name: "active alias", raw: "active", want: model.CaseOpen},
		{name: "quoted paused", raw: `"paused"`, want: model.CaseOnHold},
		{name: "onhold alias", raw: "onhold", want: model.CaseOnHold},
		{name: "inactive alias", raw: "inactive", want: model.CaseClosed},
		{name: "upper case", raw: "CLOSED", want: model.CaseClosed},
		{name: "blank", raw: "  ", want: model.CaseOpen},
		{name: "invalid", raw: "archived", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			got, err := model.NormalizeCaseStatus(tt.raw)
			if tt.wantErr {
				c.Assert(err, qt.IsNotNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}

func TestInvitationStatus(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	accepted := now.Add(-time.Hour)

	tests := []struct {
		name   string
		inv    model.ClientInvitation
		valid  bool
		status model.InvitationStatus
	}{
		{
			name:   "pending",
			inv:    model.ClientInvitation{IsActive: true, ExpiresAt: now.Add(time.Hour)},
			valid:  true,
			status: model.InvitationPending,
		},
		{
			name:   "expiry instant is still valid",
			inv:    model.ClientInvitation{IsActive: true, ExpiresAt: now},
			valid:  true,
			status: model.InvitationPending,
		},
		{
			name:   "expired",
			inv:    model.ClientInvitation{IsActive: true, ExpiresAt: now.Add(-time.Second)},
			status: model.InvitationExpired,
		},
		{
			name:   "accepted",
			inv:    model.ClientInvitation{ExpiresAt: now.Add(time.Hour), AcceptedAt: &accepted},
			status: model.InvitationAccepted,
		},
		{
			name:   "revoked",
			inv:    model.ClientInvitation{ExpiresAt: now.Add(time.Hour)},
			status: model.InvitationRevoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(tt.inv.IsValid(now), qt.Equals, tt.valid)
			c.Assert(tt.inv.Status(now), qt.Equals, tt.status)
		})
	}
}

func TestInvitationTokensAreUnique(t *testing.T) {
	c := qt.New(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok := model.NewInvitationToken()
		c.Assert(len(tok) <= 64, qt.IsTrue)
		c.Assert(seen[tok], qt.IsFalse)
		seen[tok] = true
	}
}

func TestUserPassword(t *testing.T) {
	c := qt.New(t)
	u := &model.User{}
	c.Assert(u.CheckPassword("anything"), qt.IsFalse)

	c.Assert(u.SetPassword("secret123"), qt.IsNil)
	c.Assert(u.Password, qt.Not(qt.Equals), "secret123")
	c.Assert(u.CheckPassword("secret123"), qt.IsTrue)
	c.Assert(u.CheckPassword("secret124"), qt.IsFalse)
}

func TestParseEnums(t *testing.T) {
	c := qt.New(t)

	role, err := model.ParseUserRole("professional")
	c.Assert(err, qt.IsNil)
	c.Assert(role, qt.Equals, model.RoleProfessional)
	_, err = model.ParseUserRole("superuser")
	c.Assert(err, qt.IsNotNil)

	niche, err := model.ParseNiche("")
	c.Assert(err, qt.IsNil)
	c.Assert(niche, qt.Equals, model.NicheOther)

	status, err := model.ParseAppointmentStatus("")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, model.AppointmentScheduled)
	_, err = model.ParseModality("phone")
	c.Assert(err, qt.IsNotNil)

	c.Assert(model.NormalizeEmail("  Jane@Example.COM "), qt.Equals, "jane@example.com")
}

func TestServiceDuration(t *testing.T) {
	c := qt.New(t)
	var none *model.Service
	c.Assert(none.Duration(), qt.Equals, 30)
	c.Assert((&model.Service{}).Duration(), qt.Equals, 30)
	c.Assert((&model.Service{DefaultDurationMinutes: 45}).Duration(), qt.Equals, 45)
}
