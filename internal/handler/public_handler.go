package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/service"
	"github.com/sccsite/internal/view"
)

type eventView struct {
	db.Event
	DescriptionHTML string `json:"description_html"`
}

type announcementView struct {
	db.Announcement
	ContentHTML string `json:"content_html"`
}

type aboutView struct {
	db.AboutItem
	DescriptionHTML string `json:"description_html"`
}

func newEventView(e db.Event) eventView {
	return eventView{Event: e, DescriptionHTML: view.MarkdownHTML(e.Description)}
}

// ListTeam returns committee members.
func (a *API) ListTeam(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.services.Team.Client.FetchAll(c.Request.Context())})
}

// ListDepartments returns department suggestions.
func (a *API) ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.services.Departments(c.Request.Context())})
}

// ListEvents returns events with rendered descriptions.
func (a *API) ListEvents(c *gin.Context) {
	events := a.services.Events.Client.FetchAll(c.Request.Context())
	items := make([]eventView, 0, len(events))
	for _, e := range events {
		items = append(items, newEventView(e))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "categories": service.EventCategories})
}

// GetEvent returns one event.
func (a *API) GetEvent(c *gin.Context) {
	event := a.services.Events.Client.FetchOne(c.Request.Context(), c.Param("id"))
	if event == nil {
		respondError(c, http.StatusNotFound, "活动不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": newEventView(*event)})
}

// ListProjects returns showcased projects.
func (a *API) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.services.Projects.Client.FetchAll(c.Request.Context())})
}

// ListGallery returns gallery images.
func (a *API) ListGallery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":      a.services.Gallery.Client.FetchAll(c.Request.Context()),
		"categories": service.GalleryCategories,
	})
}

// ListAnnouncements returns announcements with rendered content.
func (a *API) ListAnnouncements(c *gin.Context) {
	announcements := a.services.Announcements.Client.FetchAll(c.Request.Context())
	items := make([]announcementView, 0, len(announcements))
	for _, item := range announcements {
		items = append(items, announcementView{Announcement: item, ContentHTML: view.MarkdownHTML(item.Content)})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListAbout returns about page blocks, including ones not yet synced.
func (a *API) ListAbout(c *gin.Context) {
	about := a.services.About.Client.FetchAll(c.Request.Context())
	items := make([]aboutView, 0, len(about))
	for _, item := range about {
		items = append(items, aboutView{AboutItem: item, DescriptionHTML: view.MarkdownHTML(item.Description)})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SubmitContact stores a contact form message.
func (a *API) SubmitContact(c *gin.Context) {
	var input service.ContactInput
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	msg, err := a.services.Messages.Submit(c.Request.Context(), input)
	if err != nil {
		var verr *crud.ValidationError
		if errors.As(err, &verr) {
			respondContentError(c, err, "留言", "提交")
			return
		}
		respondError(c, http.StatusInternalServerError, "留言提交失败，请稍后再试")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "留言已提交", "id": msg.ID, "pending": msg.Pending})
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
