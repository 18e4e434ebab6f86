package tenancy_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/tenancy"
	"practice-service/internal/testdb"
)

func TestStaffResolution(t *testing.T) {
	c := qt.New(t)
	db := testdb.Open(t)
	fx := testdb.NewFixtures(t, db)
	r := tenancy.NewResolver(db, zap.NewNop())
	ctx := context.Background()

	owner := fx.User("owner@example.com", model.RoleProfessional)
	other := fx.User("other@example.com", model.RoleProfessional)
	assistant := fx.User("assistant@example.com", model.RoleStaff)
	loner := fx.User("loner@example.com", model.RoleStaff)

	a := fx.Workspace(owner, "clinic-a")
	b := fx.Workspace(other, "clinic-b")
	d := fx.Workspace(other, "clinic-d")
	fx.Member(a, owner, model.MemberOwner, true)
	fx.Member(b, assistant, model.MemberAssistant, true)
	fx.Member(d, assistant, model.MemberAssistant, false)
	fx.Member(a, assistant, model.MemberAssistant, true)

	c.Run("owner", func(c *qt.C) {
		scope, err := r.Staff(ctx, owner)
		c.Assert(err, qt.IsNil)
		c.Assert(scope.All, qt.IsFalse)
		c.Assert(scope.IDs(), qt.DeepEquals, []uint{a.ID})
		ws, err := scope.RequireCurrent()
		c.Assert(err, qt.IsNil)
		c.Assert(ws.Slug, qt.Equals, "clinic-a")
	})

	c.Run("member ordered by creation, inactive membership ignored", func(c *qt.C) {
		scope, err := r.Staff(ctx, assistant)
		c.Assert(err, qt.IsNil)
		c.Assert(scope.IDs(), qt.DeepEquals, []uint{a.ID, b.ID})
		c.Assert(scope.Allows(d.ID), qt.IsFalse)
		ws, ok := scope.Current()
		c.Assert(ok, qt.IsTrue)
		c.Assert(ws.ID, qt.Equals, a.ID)
	})

	c.Run("no workspace", func(c *qt.C) {
		scope, err := r.Staff(ctx, loner)
		c.Assert(err, qt.IsNil)
		_, err = scope.RequireCurrent()
		c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)

		var n int64
		c.Assert(scope.Apply(db.Model(&model.Workspace{}), "id").Count(&n).Error, qt.IsNil)
		c.Assert(n, qt.Equals, int64(0))
	})

	c.Run("system admin sees everything", func(c *qt.C) {
		admin := fx.User("admin@example.com", model.RoleSystemAdmin)
		scope, err := r.Staff(ctx, admin)
		c.Assert(err, qt.IsNil)
		c.Assert(scope.All, qt.IsTrue)
		c.Assert(scope.Allows(d.ID), qt.IsTrue)
		_, ok := scope.Current()
		c.Assert(ok, qt.IsFalse)

		var n int64
		c.Assert(scope.Apply(db.Model(&model.Workspace{}), "id").Count(&n).Error, qt.IsNil)
		c.Assert(n, qt.Equals, int64(3))
	})
}

func TestPortalResolution(t *testing.T) {
	c := qt.New(t)
	db := testdb.Open(t)
	fx := testdb.NewFixtures(t, db)
	r := tenancy.NewResolver(db, zap.NewNop())
	ctx := context.Background()

	pro := fx.User("pro@example.com", model.RoleProfessional)
	jane := fx.User("jane@example.com", model.RoleClient)
	a := fx.Workspace(pro, "clinic-a")
	b := fx.Workspace(pro, "clinic-b")
	inA := fx.PortalClient(a, jane)
	inB := fx.PortalClient(b, jane)
	inactive := fx.PortalClient(b, jane)
	c.Assert(db.Model(inactive).Update("is_active", false).Error, qt.IsNil)

	clients, err := r.Portal(ctx, jane, "")
	c.Assert(err, qt.IsNil)
	c.Assert(tenancy.ClientIDs(clients), qt.DeepEquals, []uint{inA.ID, inB.ID})
	c.Assert(clients[0].Workspace, qt.IsNotNil)
	c.Assert(clients[0].Workspace.Slug, qt.Equals, "clinic-a")

	clients, err = r.Portal(ctx, jane, "clinic-b")
	c.Assert(err, qt.IsNil)
	c.Assert(tenancy.ClientIDs(clients), qt.DeepEquals, []uint{inB.ID})

	_, err = r.RequirePortal(ctx, jane, "unknown")
	c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)

	// Portal identity does not grant staff scope.
	scope, err := r.Staff(ctx, jane)
	c.Assert(err, qt.IsNil)
	c.Assert(scope.IDs(), qt.HasLen, 0)
}

func TestResolverUser(t *testing.T) {
	c := qt.New(t)
	db := testdb.Open(t)
	fx := testdb.NewFixtures(t, db)
	r := tenancy.NewResolver(db, zap.NewNop())

	u := fx.User("a@example.com", model.RoleProfessional)
	got, err := r.User(context.Background(), u.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Email, qt.Equals, "a@example.com")

	c.Assert(db.Model(u).Update("is_active", false).Error, qt.IsNil)
	_, err = r.User(context.Background(), u.ID)
	c.Assert(apperr.Is(err, apperr.KindUnauthorized), qt.IsTrue)
}

func TestPolicy(t *testing.T) {
	c := qt.New(t)
	pro := &model.User{ID: 1, Role: model.RoleProfessional}
	staff := &model.User{ID: 2, Role: model.RoleStaff}
	admin := &model.User{ID: 3, Role: model.RoleStaff, IsStaff: true}
	ws := &model.Workspace{OwnerID: 1}

	c.Assert(tenancy.CanCreateWorkspace(pro), qt.IsTrue)
	c.Assert(tenancy.CanCreateWorkspace(staff), qt.IsFalse)
	c.Assert(tenancy.CanCreateWorkspace(admin), qt.IsTrue)
	c.Assert(tenancy.CanManageWorkspace(pro, ws), qt.IsTrue)
	c.Assert(tenancy.CanManageWorkspace(staff, ws), qt.IsFalse)
	c.Assert(tenancy.IsSystemAdmin(admin), qt.IsTrue)
}
