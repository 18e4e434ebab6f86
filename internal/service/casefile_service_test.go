package service_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/service"
)

func upload(name, body string) service.Upload {
	return service.Upload{
		Name:        name,
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestCaseEventRejectsForeignCaseFile(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	other := e.fx.User("b@example.com", model.RoleProfessional)
	e.fx.Workspace(owner, "clinic-a")
	otherWS := e.fx.Workspace(other, "clinic-b")
	foreignFile := e.fx.CaseFile(otherWS, e.fx.Client(otherWS, "F", "f@example.com"), "Foreign")

	_, err := e.casefiles.CreateEvent(ctx, owner, service.CaseEventInput{CaseFile: &foreignFile.ID, Title: ptr("note")})
	ae, ok := apperr.As(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ae.Kind, qt.Equals, apperr.KindValidation)
	c.Assert(ae.Field, qt.Equals, "casefile")

	var n int64
	c.Assert(e.db.Model(&model.CaseEvent{}).Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
}

func TestCaseFileLifecycle(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	jane := e.fx.Client(ws, "Jane", "jane@example.com")

	cf, err := e.casefiles.CreateCaseFile(ctx, owner, service.CaseFileInput{
		Client: &jane.ID,
		Title:  ptr("Knee"),
		Status: ptr(`"active"`),
		Tags:   []string{"sports", "knee"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(cf.Status, qt.Equals, model.CaseOpen)
	c.Assert(cf.OpenedAt.Equal(epoch), qt.IsTrue)
	c.Assert(string(cf.Tags), qt.Equals, `["sports","knee"]`)

	ev, err := e.casefiles.CreateEvent(ctx, owner, service.CaseEventInput{CaseFile: &cf.ID, Title: ptr("Intake")})
	c.Assert(err, qt.IsNil)
	c.Assert(ev.EventType, qt.Equals, model.DefaultEventType)
	c.Assert(ev.HappenedAt.Equal(epoch), qt.IsTrue)
	c.Assert(*ev.CreatedByID, qt.Equals, owner.ID)
	c.Assert(ev.VisibleToClient, qt.IsFalse)

	_, err = e.casefiles.CreateEvent(ctx, owner, service.CaseEventInput{CaseFile: &cf.ID, HappenedAt: ptr(epoch.Add(time.Hour))})
	c.Assert(err, qt.IsNil)

	files, err := e.casefiles.ListCaseFiles(ctx, owner, service.CaseFileFilter{ClientID: &jane.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(files, qt.HasLen, 1)
	c.Assert(files[0].EventsCount, qt.Equals, int64(2))

	events, err := e.casefiles.ListEvents(ctx, owner, service.CaseEventFilter{CaseFileID: &cf.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 2)
	c.Assert(events[0].HappenedAt.After(events[1].HappenedAt), qt.IsTrue)

	closed, err := e.casefiles.UpdateCaseFile(ctx, owner, cf.ID, service.CaseFileInput{Status: ptr("inactive")})
	c.Assert(err, qt.IsNil)
	c.Assert(closed.Status, qt.Equals, model.CaseClosed)
	c.Assert(closed.ClosedAt, qt.IsNotNil)

	_, err = e.casefiles.UpdateCaseFile(ctx, owner, cf.ID, service.CaseFileInput{Status: ptr("archived")})
	c.Assert(apperr.Is(err, apperr.KindValidation), qt.IsTrue)

	c.Assert(e.casefiles.DeleteCaseFile(ctx, owner, cf.ID), qt.IsNil)
	var n int64
	c.Assert(e.db.Model(&model.CaseEvent{}).Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
}

func TestUploadAttachments(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	outsider := e.fx.User("b@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	e.fx.Workspace(outsider, "clinic-b")
	cf := e.fx.CaseFile(ws, e.fx.Client(ws, "Jane", "jane@example.com"), "Knee")
	ev := e.fx.Event(cf, "Scan", true)

	_, err := e.casefiles.UploadAttachments(ctx, owner, ev.ID, nil, false)
	ae, ok := apperr.As(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ae.Field, qt.Equals, "file")

	_, err = e.casefiles.UploadAttachments(ctx, outsider, ev.ID, []service.Upload{upload("a.txt", "data")}, false)
	c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)

	rows, err := e.casefiles.UploadAttachments(ctx, owner, ev.ID, []service.Upload{
		upload("scan.txt", "scan"),
		upload("notes.txt", "notes!"),
	}, true)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)
	for _, a := range rows {
		c.Assert(a.WorkspaceID, qt.Equals, ws.ID)
		c.Assert(a.CaseFileID, qt.Equals, cf.ID)
		c.Assert(a.EventID, qt.Equals, ev.ID)
		c.Assert(*a.UploadedByID, qt.Equals, owner.ID)
		c.Assert(a.IsPrivate, qt.IsTrue)
		c.Assert(strings.HasPrefix(a.FileURL, "http://files.test/media/attachments/2025/01/"), qt.IsTrue)
	}
	c.Assert(rows[1].SizeBytes, qt.Equals, int64(6))
	c.Assert(rows[1].OriginalName, qt.Equals, "notes.txt")

	att, r, err := e.casefiles.OpenAttachment(ctx, owner, rows[0].ID)
	c.Assert(err, qt.IsNil)
	body, err := io.ReadAll(r)
	c.Assert(r.Close(), qt.IsNil)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, "scan")
	c.Assert(att.OriginalName, qt.Equals, "scan.txt")

	_, _, err = e.casefiles.OpenAttachment(ctx, outsider, rows[0].ID)
	c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)

	c.Assert(e.casefiles.DeleteAttachment(ctx, owner, rows[0].ID), qt.IsNil)
	_, _, err = e.casefiles.OpenAttachment(ctx, owner, rows[0].ID)
	c.Assert(apperr.Is(err, apperr.KindNotFound), qt.IsTrue)

	list, err := e.casefiles.ListAttachments(ctx, owner, service.AttachmentFilter{EventID: &ev.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)
}

func TestUploadRejectsOversizedFiles(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	ev := e.fx.Event(e.fx.CaseFile(ws, e.fx.Client(ws, "Jane", "jane@example.com"), "Knee"), "Scan", true)

	big := upload("big.bin", "")
	big.Size = 2 << 20
	_, err := e.casefiles.UploadAttachments(ctx, owner, ev.ID, []service.Upload{big}, false)
	c.Assert(apperr.Is(err, apperr.KindValidation), qt.IsTrue)
}

func TestMovingEventCarriesAttachments(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)
	ctx := context.Background()

	owner := e.fx.User("a@example.com", model.RoleProfessional)
	ws := e.fx.Workspace(owner, "clinic-a")
	jane := e.fx.Client(ws, "Jane", "jane@example.com")
	oldFile := e.fx.CaseFile(ws, jane, "Knee")
	newFile := e.fx.CaseFile(ws, jane, "Rehab")
	ev := e.fx.Event(oldFile, "Scan", true)

	rows, err := e.casefiles.UploadAttachments(ctx, owner, ev.ID, []service.Upload{upload("scan.txt", "scan")}, false)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 1)

	moved, err := e.casefiles.UpdateEvent(ctx, owner, ev.ID, service.CaseEventInput{CaseFile: &newFile.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(moved.CaseFileID, qt.Equals, newFile.ID)
	c.Assert(moved.Attachments, qt.HasLen, 1)
	c.Assert(moved.Attachments[0].CaseFileID, qt.Equals, newFile.ID)

	list, err := e.casefiles.ListAttachments(ctx, owner, service.AttachmentFilter{CaseFileID: &oldFile.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 0)
	list, err = e.casefiles.ListAttachments(ctx, owner, service.AttachmentFilter{CaseFileID: &newFile.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)

	c.Assert(e.casefiles.DeleteCaseFile(ctx, owner, oldFile.ID), qt.IsNil)

	att, r, err := e.casefiles.OpenAttachment(ctx, owner, rows[0].ID)
	c.Assert(err, qt.IsNil)
	body, err := io.ReadAll(r)
	c.Assert(r.Close(), qt.IsNil)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, "scan")
	c.Assert(att.CaseFileID, qt.Equals, newFile.ID)
}
