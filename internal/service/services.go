package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/storage"
	"github.com/sccsite/internal/syncqueue"
	"gorm.io/gorm"
)

// Section 聚合一个实体的存储、容错读取与后台表单控制器
type Section[T any, PT interface {
	*T
	content.Entity
}] struct {
	Store      *content.Store[T]
	Client     *content.Client[T]
	Controller *crud.Controller[T, PT]
}

func newSection[T any, PT interface {
	*T
	content.Entity
}](store *content.Store[T], repo content.Repository[T], uploader crud.Uploader, schema crud.Schema[T]) *Section[T, PT] {
	return &Section[T, PT]{
		Store:      store,
		Client:     content.NewClient(repo, schema.Name),
		Controller: crud.NewController[T, PT](repo, uploader, schema),
	}
}

// Services 是站点全部内容服务的集合
type Services struct {
	Team          *Section[db.TeamMember, *db.TeamMember]
	Events        *Section[db.Event, *db.Event]
	Projects      *Section[db.Project, *db.Project]
	Gallery       *Section[db.GalleryImage, *db.GalleryImage]
	Announcements *Section[db.Announcement, *db.Announcement]
	About         *Section[db.AboutItem, *db.AboutItem]

	EventService *EventService
	Messages     *MessageService
	Uploader     *storage.Uploader
	Local        *localstore.Store

	AboutSync   *content.WriteThrough[db.AboutItem]
	MessageSync *content.WriteThrough[db.Message]
	Reconciler  *content.Reconciler
}

// Options 配置 Services
type Options struct {
	DB           *gorm.DB
	Local        *localstore.Store
	Uploader     *storage.Uploader
	Queue        syncqueue.Queue
	SyncInterval time.Duration
	Now          func() time.Time
}

// New 组装全部内容服务
func New(opts Options) *Services {
	uploader := opts.Uploader
	if uploader == nil {
		uploader = storage.NewUploader(nil, 0)
	}

	teamStore := content.NewStore[db.TeamMember](opts.DB, "team")
	eventStore := content.NewStore[db.Event](opts.DB, "events")
	projectStore := content.NewStore[db.Project](opts.DB, "projects")
	galleryStore := content.NewStore[db.GalleryImage](opts.DB, "gallery")
	announcementStore := content.NewStore[db.Announcement](opts.DB, "announcements")
	aboutStore := content.NewStore[db.AboutItem](opts.DB, "about")
	messageStore := content.NewStore[db.Message](opts.DB, "messages")

	events := NewEventService(eventStore, opts.Local, uploader)
	aboutSync := content.NewWriteThrough[db.AboutItem](aboutStore, opts.Local, opts.Queue, "about", localstore.KeyAbout)
	messageSync := content.NewWriteThrough[db.Message](messageStore, opts.Local, opts.Queue, "messages", localstore.KeyContactMessages)

	return &Services{
		Team:          newSection[db.TeamMember, *db.TeamMember](teamStore, teamStore, uploader, TeamSchema()),
		Events:        newSection[db.Event, *db.Event](eventStore, events, uploader, EventSchema()),
		Projects:      newSection[db.Project, *db.Project](projectStore, projectStore, uploader, ProjectSchema()),
		Gallery:       newSection[db.GalleryImage, *db.GalleryImage](galleryStore, galleryStore, uploader, GallerySchema()),
		Announcements: newSection[db.Announcement, *db.Announcement](announcementStore, announcementStore, uploader, AnnouncementSchema(opts.Now)),
		About:         newSection[db.AboutItem, *db.AboutItem](aboutStore, aboutSync, uploader, AboutSchema()),

		EventService: events,
		Messages:     NewMessageService(messageSync),
		Uploader:     uploader,
		Local:        opts.Local,

		AboutSync:   aboutSync,
		MessageSync: messageSync,
		Reconciler:  content.NewReconciler(opts.Queue, opts.SyncInterval, aboutSync, messageSync),
	}
}

// Counts 返回后台面板展示的各实体数量，包含尚未同步的本地记录
func (s *Services) Counts(ctx context.Context) map[string]int64 {
	counts := map[string]int64{}
	count := func(name string, fn func(context.Context) (int64, error)) {
		n, err := fn(ctx)
		if err != nil {
			log.Printf("[service] count %s: %v", name, err)
		}
		counts[name] = n
	}

	count("team", s.Team.Store.Count)
	count("events", s.Events.Store.Count)
	count("projects", s.Projects.Store.Count)
	count("gallery", s.Gallery.Store.Count)
	count("announcements", s.Announcements.Store.Count)
	count("about", s.About.Store.Count)
	counts["about"] += int64(len(s.AboutSync.Pending()))

	unread, err := s.Messages.UnreadCount(ctx)
	if err != nil {
		log.Printf("[service] count unread messages: %v", err)
	}
	counts["unread_messages"] = int64(unread)
	return counts
}

// Departments 返回现有成员的部门列表，用作表单提示
func (s *Services) Departments(ctx context.Context) []string {
	seen := map[string]bool{}
	departments := []string{}
	for _, member := range s.Team.Client.FetchAll(ctx) {
		dept := strings.TrimSpace(member.Department)
		if dept == "" || seen[strings.ToLower(dept)] {
			continue
		}
		seen[strings.ToLower(dept)] = true
		departments = append(departments, dept)
	}
	sort.Strings(departments)
	return departments
}
