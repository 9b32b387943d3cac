package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sccsite/internal/auth"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/service"
	"github.com/sccsite/internal/view"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	services  *service.Services
	gate      *auth.Gate
	maxUpload int64

	team          *contentHandler[db.TeamMember, *db.TeamMember]
	events        *contentHandler[db.Event, *db.Event]
	projects      *contentHandler[db.Project, *db.Project]
	gallery       *contentHandler[db.GalleryImage, *db.GalleryImage]
	announcements *contentHandler[db.Announcement, *db.Announcement]
	about         *contentHandler[db.AboutItem, *db.AboutItem]
}

// NewAPI constructs a handler set with shared services.
func NewAPI(services *service.Services, gate *auth.Gate, maxUploadBytes int64) *API {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	a := &API{services: services, gate: gate, maxUpload: maxUploadBytes}

	a.team = newContentHandler(services.Team, "成员", bindPayload[teamPayload, db.TeamMember])
	a.events = newContentHandler(services.Events, "活动", bindPayload[eventPayload, db.Event])
	a.events.prepare = a.attachEventGallery
	a.projects = newContentHandler(services.Projects, "项目", bindPayload[projectPayload, db.Project])
	a.gallery = newContentHandler(services.Gallery, "图片", bindPayload[galleryPayload, db.GalleryImage])
	a.announcements = newContentHandler(services.Announcements, "公告", bindPayload[announcementPayload, db.Announcement])
	a.about = newContentHandler(services.About, "关于内容", bindPayload[aboutPayload, db.AboutItem])
	return a
}

// ContentRoutes is the admin CRUD surface of one entity.
type ContentRoutes interface {
	Name() string
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// ContentRoutes returns the admin CRUD handlers for every entity.
func (a *API) ContentRoutes() []ContentRoutes {
	return []ContentRoutes{a.team, a.events, a.projects, a.gallery, a.announcements, a.about}
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{"siteName": view.SiteName}
	for key, value := range data {
		payload[key] = value
	}
	c.HTML(status, template, payload)
}
