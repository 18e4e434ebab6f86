package service_test

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/service"
)

func TestClientStore(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	outsider := e.fx.User("b@example.com", model.RoleProfessional)
	loner := e.fx.User("c@example.com", model.RoleStaff)
	ws := e.fx.Workspace(owner, "clinic-a")
	e.fx.Workspace(outsider, "clinic-b")

	c.Run("create injects the workspace", func(c *qt.C) {
		cl, err := e.clients.Create(ctx, owner, service.ClientInput{
			FullName:  ptr("Jane Doe"),
			Email:     ptr("Jane@Example.com"),
			BirthDate: ptr("1990-05-01"),
		})
		c.Assert(err, qt.IsNil)
		c.Assert(cl.WorkspaceID, qt.Equals, ws.ID)
		c.Assert(cl.Email, qt.Equals, "jane@example.com")
		c.Assert(cl.BirthDate.Format("2006-01-02"), qt.Equals, "1990-05-01")
		c.Assert(cl.IsActive, qt.IsTrue)
	})

	c.Run("duplicate email in the workspace conflicts", func(c *qt.C) {
		_, err := e.clients.Create(ctx, owner, service.ClientInput{FullName: ptr("Other Jane"), Email: ptr("JANE@example.com")})
		ae, ok := apperr.As(err)
		c.Assert(ok, qt.IsTrue)
		c.Assert(ae.Kind, qt.Equals, apperr.KindConflict)
		c.Assert(ae.Field, qt.Equals, "email")
	})

	c.Run("same email in another workspace is fine", func(c *qt.C) {
		cl, err := e.clients.Create(ctx, outsider, service.ClientInput{FullName: ptr("Jane"), Email: ptr("jane@example.com")})
		c.Assert(err, qt.IsNil)
		c.Assert(cl.WorkspaceID, qt.Not(qt.Equals), ws.ID)
	})

	c.Run("no workspace", func(c *qt.C) {
		_, err := e.clients.Create(ctx, loner, service.ClientInput{FullName: ptr("Nobody")})
		c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)

		list, err := e.clients.List(ctx, loner)
		c.Assert(err, qt.IsNil)
		c.Assert(list, qt.HasLen, 0)
	})

	c.Run("records outside the scope are not found", func(c *qt.C) {
		list, err := e.clients.List(ctx, owner)
		c.Assert(err, qt.IsNil)
		c.Assert(list, qt.HasLen, 1)

		_, err = e.clients.Get(ctx, outsider, list[0].ID)
		c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)
		_, err = e.clients.Update(ctx, outsider, list[0].ID, service.ClientInput{Notes: ptr("x")})
		c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)
		err = e.clients.Delete(ctx, outsider, list[0].ID)
		c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)
	})

	c.Run("system admin reaches every workspace", func(c *qt.C) {
		admin := e.fx.User("root@example.com", model.RoleSystemAdmin)
		list, err := e.clients.List(ctx, admin)
		c.Assert(err, qt.IsNil)
		c.Assert(list, qt.HasLen, 2)
	})

	c.Run("bad birth date", func(c *qt.C) {
		_, err := e.clients.Create(ctx, owner, service.ClientInput{FullName: ptr("X"), BirthDate: ptr("01/05/1990")})
		ae, ok := apperr.As(err)
		c.Assert(ok, qt.IsTrue)
		c.Assert(ae.Field, qt.Equals, "birth_date")
	})
}

func TestAppointmentEndDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	jane := e.fx.Client(ws, "Jane", "jane@example.com")
	long := e.fx.Service(ws, 45)
	zero := e.fx.Service(ws, 0)
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		service *uint
		end     *time.Time
		want    time.Time
	}{
		{name: "no service falls back to 30 minutes", want: start.Add(30 * time.Minute)},
		{name: "service duration", service: &long.ID, want: start.Add(45 * time.Minute)},
		{name: "zero duration service", service: &zero.ID, want: start.Add(30 * time.Minute)},
		{name: "explicit end wins", service: &long.ID, end: ptr(start.Add(2 * time.Hour)), want: start.Add(2 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			appt, err := e.appointments.Create(ctx, owner, service.AppointmentInput{
				Client:  &jane.ID,
				Service: tt.service,
				Start:   &start,
				End:     tt.end,
			})
			c.Assert(err, qt.IsNil)
			c.Assert(appt.End.Equal(tt.want), qt.IsTrue, qt.Commentf("got %s", appt.End))
			c.Assert(appt.Status, qt.Equals, model.AppointmentScheduled)
			c.Assert(appt.Modality, qt.Equals, model.ModalityPresential)
			c.Assert(*appt.ProfessionalID, qt.Equals, owner.ID)
		})
	}
}

func TestAppointmentValidation(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	other := e.fx.User("b@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	otherWS := e.fx.Workspace(other, "clinic-b")
	jane := e.fx.Client(ws, "Jane", "jane@example.com")
	foreign := e.fx.Client(otherWS, "Foreign", "f@example.com")
	foreignService := e.fx.Service(otherWS, 60)
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	fieldOf := func(err error) string {
		ae, ok := apperr.As(err)
		c.Assert(ok, qt.IsTrue, qt.Commentf("err: %v", err))
		c.Assert(ae.Kind, qt.Equals, apperr.KindValidation)
		return ae.Field
	}

	_, err := e.appointments.Create(ctx, owner, service.AppointmentInput{Client: &foreign.ID, Start: &start})
	c.Assert(fieldOf(err), qt.Equals, "client")

	_, err = e.appointments.Create(ctx, owner, service.AppointmentInput{Client: &jane.ID, Service: &foreignService.ID, Start: &start})
	c.Assert(fieldOf(err), qt.Equals, "service")

	_, err = e.appointments.Create(ctx, owner, service.AppointmentInput{Client: &jane.ID, Start: &start, End: ptr(start.Add(-time.Minute))})
	c.Assert(fieldOf(err), qt.Equals, "end")

	_, err = e.appointments.Create(ctx, owner, service.AppointmentInput{Client: &jane.ID, Start: &start, Modality: ptr("carrier-pigeon")})
	c.Assert(fieldOf(err), qt.Equals, "modality")

	_, err = e.appointments.Create(ctx, owner, service.AppointmentInput{Client: &jane.ID})
	c.Assert(fieldOf(err), qt.Equals, "start")

	var n int64
	c.Assert(e.db.Model(&model.Appointment{}).Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
}

func TestConsultationStore(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	jane := e.fx.Client(ws, "Jane", "jane@example.com")
	john := e.fx.Client(ws, "John", "john@example.com")
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	appt, err := e.appointments.Create(ctx, owner, service.AppointmentInput{Client: &jane.ID, Start: &start})
	c.Assert(err, qt.IsNil)

	cons, err := e.consultations.Create(ctx, owner, service.ConsultationInput{
		Client:      &jane.ID,
		Appointment: &appt.ID,
		Title:       ptr("First visit"),
		ExtraData:   map[string]interface{}{"blood_pressure": "120/80"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(cons.VisibleToClient, qt.IsTrue)
	c.Assert(*cons.ProfessionalID, qt.Equals, owner.ID)

	got, err := e.consultations.Get(ctx, owner, cons.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.ExtraData["blood_pressure"], qt.Equals, "120/80")

	_, err = e.consultations.Create(ctx, owner, service.ConsultationInput{Client: &john.ID, Appointment: &appt.ID})
	ae, ok := apperr.As(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ae.Field, qt.Equals, "appointment")

	_, err = e.consultations.Update(ctx, owner, cons.ID, service.ConsultationInput{Client: &john.ID})
	ae, ok = apperr.As(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ae.Kind, qt.Equals, apperr.KindValidation)
	c.Assert(ae.Field, qt.Equals, "appointment")

	got, err = e.consultations.Get(ctx, owner, cons.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.ClientID, qt.Equals, jane.ID)

	list, err := e.consultations.List(ctx, owner, service.ConsultationFilter{ClientID: &john.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 0)
}

func TestCatalogStore(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	e.fx.Workspace(owner, "clinic-a")

	svc, err := e.catalog.Create(ctx, owner, service.ServiceInput{Name: ptr("Checkup"), Price: ptr("80.50")})
	c.Assert(err, qt.IsNil)
	c.Assert(svc.DefaultDurationMinutes, qt.Equals, 30)

	_, err = e.catalog.Update(ctx, owner, svc.ID, service.ServiceInput{Price: ptr("eighty")})
	ae, ok := apperr.As(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ae.Field, qt.Equals, "price")

	_, err = e.catalog.Update(ctx, owner, svc.ID, service.ServiceInput{DefaultDurationMinutes: ptr(0)})
	c.Assert(apperr.Is(err, apperr.KindValidation), qt.IsTrue)

	updated, err := e.catalog.Update(ctx, owner, svc.ID, service.ServiceInput{DefaultDurationMinutes: ptr(50), IsActive: ptr(false)})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.DefaultDurationMinutes, qt.Equals, 50)
	c.Assert(updated.IsActive, qt.IsFalse)

	c.Assert(e.catalog.Delete(ctx, owner, svc.ID), qt.IsNil)
	_, err = e.catalog.Get(ctx, owner, svc.ID)
	c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)
}
