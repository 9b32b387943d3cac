package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	models := append(db.ContentModels(), &db.LocalEntry{})
	if err := gdb.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type recordingUploader struct {
	removed []string
}

func (u *recordingUploader) Upload(_ context.Context, file storage.File, folder string) (storage.Asset, error) {
	if strings.HasPrefix(file.Name, "bad") {
		return storage.Asset{}, storage.ErrEmptyFile
	}
	return storage.Asset{URL: "/uploads/" + folder + "/" + file.Name}, nil
}

func (u *recordingUploader) Remove(_ context.Context, url, _ string) {
	u.removed = append(u.removed, url)
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	gdb := setupServiceTestDB(t)
	return New(Options{
		DB:    gdb,
		Local: localstore.New(gdb),
		Now:   func() time.Time { return time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC) },
	})
}

func TestContactMessageLifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	msg, err := svc.Messages.Submit(ctx, ContactInput{
		Name:    " Lin ",
		Email:   "lin@example.com",
		Subject: "Join",
		Message: "How can I join the committee?",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if msg.ID == "" || msg.Name != "Lin" || msg.IsRead {
		t.Fatalf("unexpected message: %+v", msg)
	}

	items, err := svc.Messages.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].IsRead {
		t.Fatalf("expected one unread message, got %+v", items)
	}
	if unread, _ := svc.Messages.UnreadCount(ctx); unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	read, err := svc.Messages.MarkRead(ctx, msg.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if !read.IsRead {
		t.Fatalf("expected message to be read")
	}
	items, _ = svc.Messages.List(ctx)
	if len(items) != 1 || !items[0].IsRead {
		t.Fatalf("expected read flag to persist, got %+v", items)
	}

	if err := svc.Messages.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	items, _ = svc.Messages.List(ctx)
	if len(items) != 0 {
		t.Fatalf("expected no messages, got %d", len(items))
	}
}

func TestContactMessageValidation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Messages.Submit(ctx, ContactInput{Name: "A", Email: "a@example.com"})
	var verr *crud.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !reflect.DeepEqual(verr.Fields, []string{"subject", "message"}) {
		t.Fatalf("unexpected missing fields: %v", verr.Fields)
	}

	_, err = svc.Messages.Submit(ctx, ContactInput{Name: "A", Email: "not-an-email", Subject: "s", Message: "m"})
	if !errors.As(err, &verr) || verr.Fields[0] != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}

	if items, _ := svc.Messages.List(ctx); len(items) != 0 {
		t.Fatalf("invalid submissions must not be stored")
	}
}

func TestEventExtrasFollowCreatedID(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	attendees := 120
	draft := db.Event{
		Title:       "Hack Night",
		Date:        "2025-05-01",
		Location:    "Lab 3",
		Description: "Build things overnight",
		EventExtra: db.EventExtra{
			Attendees: &attendees,
			Outcome:   "12 projects shipped",
			Guests:    []string{"Ada", " ", "", "Grace", "", "", "", "", "", ""},
		},
	}

	created, err := svc.Events.Controller.Save(ctx, &draft, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if created.Category != DefaultEventCategory {
		t.Fatalf("expected default category, got %q", created.Category)
	}

	reloaded, err := svc.EventService.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.Attendees == nil || *reloaded.Attendees != 120 || reloaded.Outcome != "12 projects shipped" {
		t.Fatalf("extras not merged: %+v", reloaded.EventExtra)
	}
	if !reflect.DeepEqual(reloaded.Guests, []string{"Ada", "Grace"}) {
		t.Fatalf("expected blank guests dropped, got %v", reloaded.Guests)
	}

	listed := svc.Events.Client.FetchAll(ctx)
	if len(listed) != 1 || listed[0].Outcome == "" {
		t.Fatalf("expected extras on list, got %+v", listed)
	}

	if err := svc.Events.Controller.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	extras := localstore.Load(svc.Local, localstore.KeyEventExtra, map[string]db.EventExtra{})
	if _, ok := extras[created.ID]; ok {
		t.Fatalf("expected extras to be dropped with the event")
	}
}

func TestEventGalleryAppendsAndCaps(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	draft := db.Event{Title: "Expo", Date: "2025-06-01", Location: "Hall", Description: "d",
		GalleryImages: []string{"/g/1.png", "/g/2.png"}}
	created, err := svc.Events.Controller.Save(ctx, &draft, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	edit := *created
	edit.GalleryImages = []string{"/g/3.png"}
	updated, err := svc.Events.Controller.Save(ctx, &edit, nil)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !reflect.DeepEqual(updated.GalleryImages, []string{"/g/1.png", "/g/2.png", "/g/3.png"}) {
		t.Fatalf("expected appended gallery, got %v", updated.GalleryImages)
	}

	edit = *updated
	edit.GalleryImages = nil
	for i := 4; i <= 20; i++ {
		edit.GalleryImages = append(edit.GalleryImages, fmt.Sprintf("/g/%d.png", i))
	}
	updated, err = svc.Events.Controller.Save(ctx, &edit, nil)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if len(updated.GalleryImages) != MaxGalleryImages || updated.GalleryImages[0] != "/g/1.png" {
		t.Fatalf("expected %d images keeping existing first, got %v", MaxGalleryImages, updated.GalleryImages)
	}
}

func TestRemoveGalleryImage(t *testing.T) {
	gdb := setupServiceTestDB(t)
	up := &recordingUploader{}
	events := NewEventService(content.NewStore[db.Event](gdb, "events"), localstore.New(gdb), up)
	ctx := context.Background()

	uploaded := events.UploadGallery(ctx, []storage.File{
		{Name: "a.png"}, {Name: "bad.png"}, {Name: "b.png"},
	})
	if !reflect.DeepEqual(uploaded, []string{"/uploads/events/gallery/a.png", "/uploads/events/gallery/b.png"}) {
		t.Fatalf("unexpected uploads: %v", uploaded)
	}

	event := db.Event{Title: "t", Date: "d", Location: "l", Description: "x", GalleryImages: uploaded}
	if err := events.Create(ctx, &event); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := events.RemoveGalleryImage(ctx, event.ID, uploaded[0])
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !reflect.DeepEqual(updated.GalleryImages, uploaded[1:]) {
		t.Fatalf("unexpected gallery: %v", updated.GalleryImages)
	}
	if !reflect.DeepEqual(up.removed, uploaded[:1]) {
		t.Fatalf("expected asset removal, got %v", up.removed)
	}

	if _, err := events.RemoveGalleryImage(ctx, event.ID, "/missing.png"); !errors.Is(err, ErrGalleryImageNotFound) {
		t.Fatalf("expected ErrGalleryImageNotFound, got %v", err)
	}
	if _, err := events.RemoveGalleryImage(ctx, "nope", uploaded[1]); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSchemasApplyDefaults(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	ann, err := svc.Announcements.Controller.Save(ctx, &db.Announcement{Title: "Internship", Content: "Apply now"}, nil)
	if err != nil {
		t.Fatalf("announcement save failed: %v", err)
	}
	if ann.Category != DefaultAnnouncementCategory || ann.Date != "2025-04-02" {
		t.Fatalf("unexpected announcement defaults: %+v", ann)
	}

	about, err := svc.About.Controller.Save(ctx, &db.AboutItem{Title: "Mission", Description: "d", Type: "weird"}, nil)
	if err != nil {
		t.Fatalf("about save failed: %v", err)
	}
	if about.Type != db.AboutTypeSection {
		t.Fatalf("expected section type, got %q", about.Type)
	}

	project, err := svc.Projects.Controller.Save(ctx, &db.Project{
		Title: "Site", Description: "d", Technologies: []string{"Go, gin", " SQL ", "go"},
	}, nil)
	if err != nil {
		t.Fatalf("project save failed: %v", err)
	}
	if !reflect.DeepEqual(project.Technologies, []string{"Go", "gin", "SQL"}) {
		t.Fatalf("unexpected technologies: %v", project.Technologies)
	}

	if _, err := svc.Team.Controller.Save(ctx, &db.TeamMember{Name: "Ada", Role: "Chair"}, nil); err == nil {
		t.Fatalf("expected missing department/email to be rejected")
	}
	if _, err := svc.Gallery.Controller.Save(ctx, &db.GalleryImage{Title: "No image"}, nil); err == nil {
		t.Fatalf("expected gallery without image to be rejected")
	}
}

func TestCountsAndDepartments(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	for _, m := range []db.TeamMember{
		{Name: "A", Role: "r", Department: "Tech", Email: "a@example.com"},
		{Name: "B", Role: "r", Department: "Design", Email: "b@example.com"},
		{Name: "C", Role: "r", Department: "tech", Email: "c@example.com"},
	} {
		member := m
		if _, err := svc.Team.Controller.Save(ctx, &member, nil); err != nil {
			t.Fatalf("save member failed: %v", err)
		}
	}
	if _, err := svc.Messages.Submit(ctx, ContactInput{Name: "n", Email: "n@example.com", Subject: "s", Message: "m"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	depts := svc.Departments(ctx)
	if len(depts) != 2 || depts[0] != "Design" {
		t.Fatalf("unexpected departments: %v", depts)
	}

	counts := svc.Counts(ctx)
	if counts["team"] != 3 || counts["unread_messages"] != 1 || counts["events"] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestMergeGalleryAndParseTechnologies(t *testing.T) {
	got := MergeGallery([]string{"a", "", "b"}, []string{"b", "c"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected merge: %v", got)
	}
	if got := ParseTechnologies(); len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGalleryEditKeepsDimensions(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	created, err := svc.Gallery.Controller.Save(ctx, &db.GalleryImage{
		Title: "Fair", ImageURL: "https://cdn.example.com/gallery/fair.jpg", Width: 1600, Height: 900,
	}, nil)
	if err != nil {
		t.Fatalf("gallery save failed: %v", err)
	}

	draft := &db.GalleryImage{Title: "Freshers Fair"}
	draft.ID = created.ID
	updated, err := svc.Gallery.Controller.Save(ctx, draft, nil)
	if err != nil {
		t.Fatalf("gallery update failed: %v", err)
	}
	if updated.ImageURL != created.ImageURL || updated.Width != 1600 || updated.Height != 900 {
		t.Fatalf("expected image and dimensions to be kept, got %+v", updated)
	}
	if updated.Title != "Freshers Fair" || updated.CreatedAt.Unix() != created.CreatedAt.Unix() {
		t.Fatalf("unexpected updated record %+v", updated)
	}
}
