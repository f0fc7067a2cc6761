package form

import (
	"errors"
	"testing"

	"formbase-api/internal/domain"
	"formbase-api/internal/rowquery"
)

func TestFormService_CreateForm(t *testing.T) {
	svc, _ := newTestService(t)

	f, err := svc.CreateForm("u1", CreateFormInput{Name: " Signup "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Name != "Signup" || f.IsPublished || len(f.Fields) != 0 {
		t.Fatalf("unexpected form %+v", f)
	}
	if hdr := f.HeaderConfig.Data(); hdr.Enabled || hdr.Left == nil {
		t.Fatalf("header should default to disabled with empty cells: %+v", hdr)
	}

	if _, err := svc.CreateForm("u1", CreateFormInput{Name: "Signup"}); !domain.HasConflictCode(err, domain.CodeDuplicateName) {
		t.Fatalf("expected DuplicateName, got %v", err)
	}
	if _, err := svc.CreateForm("u2", CreateFormInput{Name: "Signup"}); err != nil {
		t.Fatalf("other user may reuse the name: %v", err)
	}
	if _, err := svc.CreateForm("u1", CreateFormInput{Name: ""}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormService_UpdateForm_Partial(t *testing.T) {
	svc, _ := newTestService(t)
	f, _ := svc.CreateForm("u1", CreateFormInput{Name: "Survey"})
	other, _ := svc.CreateForm("u1", CreateFormInput{Name: "Other"})

	published := true
	got, err := svc.UpdateForm("u1", f.ID, UpdateFormInput{IsPublished: &published})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !got.IsPublished || got.Name != "Survey" {
		t.Fatalf("unexpected %+v", got)
	}

	fields := []FormField{
		{ID: "f1", Type: WidgetText, Label: "Name", IsRequired: true},
		{ID: "f2", Type: WidgetEmail, Label: "Email", Order: 1},
	}
	got, err = svc.UpdateForm("u1", f.ID, UpdateFormInput{Fields: &fields})
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if len(got.Fields) != 2 || got.Fields[1].Type != WidgetEmail || !got.IsPublished {
		t.Fatalf("fields not stored: %+v", got.Fields)
	}

	name := other.Name
	if _, err := svc.UpdateForm("u1", f.ID, UpdateFormInput{Name: &name}); !domain.HasConflictCode(err, domain.CodeDuplicateName) {
		t.Fatalf("expected DuplicateName, got %v", err)
	}

	bad := []FormField{{ID: "x", Type: "SLIDER"}}
	if _, err := svc.UpdateForm("u1", f.ID, UpdateFormInput{Fields: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.UpdateForm("u2", f.ID, UpdateFormInput{IsPublished: &published}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign form, got %v", err)
	}
}

func TestFormService_GetPublicForm(t *testing.T) {
	svc, _ := newTestService(t)

	draft, _ := svc.CreateForm("u1", CreateFormInput{Name: "Draft"})
	_, err := svc.GetPublicForm(draft.ID)
	if !errors.Is(err, domain.ErrNotFound) || err.Error() != "Form not found or not published" {
		t.Fatalf("draft must not be public, got %v", err)
	}

	live := createPublished(t, svc, "u1", "Live", FormField{ID: "f1", Type: WidgetText, Label: "Name"})
	pub, err := svc.GetPublicForm(live.ID)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if pub.Name != "Live" || len(pub.Fields) != 1 {
		t.Fatalf("unexpected %+v", pub)
	}

	if err := svc.ArchiveForm("u1", live.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := svc.GetPublicForm(live.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("archived form must not be public, got %v", err)
	}
}

func TestCheckRequired(t *testing.T) {
	fields := []FormField{
		{ID: "name", Type: WidgetText, Label: "Name", IsRequired: true},
		{ID: "email", Type: WidgetEmail, Label: "Email"},
		{ID: "site", Type: WidgetURL, Label: "Website"},
	}

	cases := []struct {
		doc  string
		fail bool
	}{
		{`{"name":"Ann"}`, false},
		{`{"name":"Ann","email":"ann@x.com","site":"https://x.com"}`, false},
		{`{}`, true},
		{`{"name":"   "}`, true},
		{`{"name":null}`, true},
		{`{"name":"Ann","email":"not-an-email"}`, true},
		{`{"name":"Ann","site":"not a url"}`, true},
		{`{"name":"Ann","email":""}`, false},
	}
	for _, tc := range cases {
		err := CheckRequired(fields, rowquery.MustParsePayload(tc.doc))
		if tc.fail && !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.doc, err)
		}
		if !tc.fail && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.doc, err)
		}
	}
}

func TestFormService_Submit(t *testing.T) {
	svc, db := newTestService(t)
	f := createPublished(t, svc, "u1", "Contact",
		FormField{ID: "name", Type: WidgetText, Label: "Name", IsRequired: true})

	if _, err := svc.Submit(f.ID, rowquery.MustParsePayload(`{}`)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	sub, err := svc.Submit(f.ID, rowquery.MustParsePayload(`{"name":"Ann","extra":1}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.FormID != f.ID || string(sub.Data) != `{"name":"Ann","extra":1}` {
		t.Fatalf("unexpected submission %+v (%s)", sub, sub.Data)
	}

	draft, _ := svc.CreateForm("u1", CreateFormInput{Name: "Draft"})
	if _, err := svc.Submit(draft.ID, rowquery.MustParsePayload(`{}`)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for draft, got %v", err)
	}

	if n := countSubmissions(t, db, f.ID); n != 1 {
		t.Fatalf("submissions = %d", n)
	}
}

func TestFormService_ListSubmissions(t *testing.T) {
	svc, _ := newTestService(t)
	f := createPublished(t, svc, "u1", "Contact")
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(f.ID, rowquery.MustParsePayload(`{"n":1}`)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	subs, err := svc.ListSubmissions("u1", f.ID)
	if err != nil || len(subs) != 3 {
		t.Fatalf("list: %d %v", len(subs), err)
	}
	if _, err := svc.ListSubmissions("u2", f.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign listing should be not found, got %v", err)
	}
}

func TestFormService_Lifecycle(t *testing.T) {
	svc, db := newTestService(t)
	f := createPublished(t, svc, "u1", "Feedback")
	if _, err := svc.Submit(f.ID, rowquery.MustParsePayload(`{"a":1}`)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.PurgeForm("u1", f.ID); !errors.Is(err, domain.ErrNotFound) || err.Error() != "Deleted form not found" {
		t.Fatalf("purging an active form should be not found, got %v", err)
	}

	if err := svc.ArchiveForm("u1", f.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := svc.ArchiveForm("u1", f.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second archive should be not found, got %v", err)
	}
	if n := countSubmissions(t, db, f.ID); n != 1 {
		t.Fatalf("archive must not touch submissions, got %d", n)
	}

	replacement, err := svc.CreateForm("u1", CreateFormInput{Name: "Feedback"})
	if err != nil {
		t.Fatalf("name of an archived form should be free: %v", err)
	}
	if _, err := svc.RestoreForm("u1", f.ID); !domain.HasConflictCode(err, domain.CodeNameConflict) {
		t.Fatalf("expected NameConflict, got %v", err)
	}

	newName := "Feedback v2"
	if _, err := svc.UpdateForm("u1", replacement.ID, UpdateFormInput{Name: &newName}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	restored, err := svc.RestoreForm("u1", f.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.DeletedAt.Valid {
		t.Fatal("restored form should be active")
	}

	if err := svc.ArchiveForm("u1", f.ID); err != nil {
		t.Fatalf("archive again: %v", err)
	}
	if _, err := svc.PurgeForm("u2", f.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign purge should be not found, got %v", err)
	}
	if _, err := svc.PurgeForm("u1", f.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n := countSubmissions(t, db, f.ID); n != 0 {
		t.Fatalf("purge should remove submissions, got %d", n)
	}
	var n int64
	db.Unscoped().Model(&Form{}).Where("id = ?", f.ID).Count(&n)
	if n != 0 {
		t.Fatal("form should be gone")
	}
}

func TestFormService_ListForms_DBError(t *testing.T) {
	svc, db := newTestService(t)
	breakDB(t, db)

	if _, err := svc.ListForms("u1"); err == nil {
		t.Fatal("expected error")
	}
}
