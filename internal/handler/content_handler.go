package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/service"
	"github.com/sccsite/internal/storage"
)

// stringList 接受 JSON 数组或逗号分隔的字符串
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = service.ParseTechnologies(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type modelPayload[T any] interface {
	toModel() T
}

func bindPayload[P modelPayload[T], T any](c *gin.Context) (*T, error) {
	var payload P
	if err := c.ShouldBind(&payload); err != nil {
		return nil, err
	}
	model := payload.toModel()
	return &model, nil
}

type teamPayload struct {
	Name        string `json:"name" form:"name"`
	Role        string `json:"role" form:"role"`
	Department  string `json:"department" form:"department"`
	Email       string `json:"email" form:"email"`
	LinkedIn    string `json:"linkedin" form:"linkedin"`
	ImageURL    string `json:"image_url" form:"image_url"`
	Description string `json:"description" form:"description"`
}

func (p teamPayload) toModel() db.TeamMember {
	return db.TeamMember{Name: p.Name, Role: p.Role, Department: p.Department, Email: p.Email,
		LinkedIn: p.LinkedIn, ImageURL: p.ImageURL, Description: p.Description}
}

type eventPayload struct {
	Title           string     `json:"title" form:"title"`
	Date            string     `json:"date" form:"date"`
	Location        string     `json:"location" form:"location"`
	Description     string     `json:"description" form:"description"`
	Category        string     `json:"category" form:"category"`
	ImageURL        string     `json:"image_url" form:"image_url"`
	IsLive          bool       `json:"is_live" form:"is_live"`
	GalleryImages   stringList `json:"gallery_images" form:"gallery_images"`
	Attendees       *int       `json:"attendees" form:"attendees"`
	Outcome         string     `json:"outcome" form:"outcome"`
	GuestFeedback   string     `json:"guest_feedback" form:"guest_feedback"`
	StudentFeedback string     `json:"student_feedback" form:"student_feedback"`
	Guests          []string   `json:"guests" form:"guests"`
}

func (p eventPayload) toModel() db.Event {
	return db.Event{
		Title: p.Title, Date: p.Date, Location: p.Location, Description: p.Description,
		Category: p.Category, ImageURL: p.ImageURL, IsLive: p.IsLive, GalleryImages: p.GalleryImages,
		EventExtra: db.EventExtra{
			Attendees:       p.Attendees,
			Outcome:         p.Outcome,
			GuestFeedback:   p.GuestFeedback,
			StudentFeedback: p.StudentFeedback,
			Guests:          p.Guests,
		},
	}
}

type projectPayload struct {
	Title        string     `json:"title" form:"title"`
	Description  string     `json:"description" form:"description"`
	Technologies stringList `json:"technologies" form:"technologies"`
	GithubURL    string     `json:"github_url" form:"github_url"`
	ProjectURL   string     `json:"project_url" form:"project_url"`
	ImageURL     string     `json:"image_url" form:"image_url"`
}

func (p projectPayload) toModel() db.Project {
	return db.Project{Title: p.Title, Description: p.Description, Technologies: p.Technologies,
		GithubURL: p.GithubURL, ProjectURL: p.ProjectURL, ImageURL: p.ImageURL}
}

type galleryPayload struct {
	Title       string `json:"title" form:"title"`
	ImageURL    string `json:"image_url" form:"image_url"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
}

func (p galleryPayload) toModel() db.GalleryImage {
	return db.GalleryImage{Title: p.Title, ImageURL: p.ImageURL, Category: p.Category, Description: p.Description}
}

type announcementPayload struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category"`
	ImageURL string `json:"image_url" form:"image_url"`
}

func (p announcementPayload) toModel() db.Announcement {
	return db.Announcement{Title: p.Title, Content: p.Content, Category: p.Category, ImageURL: p.ImageURL}
}

type aboutPayload struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Type        string `json:"type" form:"type"`
	ImageURL    string `json:"image_url" form:"image_url"`
}

func (p aboutPayload) toModel() db.AboutItem {
	return db.AboutItem{Title: p.Title, Description: p.Description, Type: p.Type, ImageURL: p.ImageURL}
}

// contentHandler 是单个实体的后台 CRUD 接口
type contentHandler[T any, PT interface {
	*T
	content.Entity
}] struct {
	section *service.Section[T, PT]
	label   string
	bind    func(c *gin.Context) (*T, error)
	// prepare 在保存前处理实体特有的附加文件，返回的函数在保存结束后调用，保存失败时参数为 nil
	prepare func(c *gin.Context, draft *T) (func(saved *T), error)
}

func newContentHandler[T any, PT interface {
	*T
	content.Entity
}](section *service.Section[T, PT], label string, bind func(c *gin.Context) (*T, error)) *contentHandler[T, PT] {
	return &contentHandler[T, PT]{section: section, label: label, bind: bind}
}

func (h *contentHandler[T, PT]) Name() string {
	return h.section.Controller.Schema().Name
}

// List returns every record, newest first.
func (h *contentHandler[T, PT]) List(c *gin.Context) {
	items, err := h.section.Controller.Refresh(c.Request.Context())
	if err != nil {
		respondContentError(c, err, h.label, "获取")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Get loads one record into the edit form.
func (h *contentHandler[T, PT]) Get(c *gin.Context) {
	item, err := h.section.Controller.Repository().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondContentError(c, err, h.label, "获取")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Create saves a new record from a JSON or multipart body.
func (h *contentHandler[T, PT]) Create(c *gin.Context) {
	h.save(c, "")
}

// Update saves an existing record. Without an uploaded file the stored image is kept.
func (h *contentHandler[T, PT]) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "无效的"+h.label+"ID")
		return
	}
	h.save(c, id)
}

func (h *contentHandler[T, PT]) save(c *gin.Context, id string) {
	draft, err := h.bind(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}
	PT(draft).SetID(id)

	file, closeFile, err := formFile(c, "image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}
	defer closeFile()

	finish := func(*T) {}
	if h.prepare != nil {
		if finish, err = h.prepare(c, draft); err != nil {
			respondContentError(c, err, h.label, "保存")
			return
		}
	}

	saved, err := h.section.Controller.Save(c.Request.Context(), draft, file)
	finish(saved)
	if err != nil {
		action := "创建"
		if id != "" {
			action = "更新"
		}
		respondContentError(c, err, h.label, action)
		return
	}

	if id == "" {
		c.JSON(http.StatusCreated, gin.H{"message": h.label + "已创建", "item": saved})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.label + "已更新", "item": saved})
}

// Delete removes a record and its image.
func (h *contentHandler[T, PT]) Delete(c *gin.Context) {
	if err := h.section.Controller.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondContentError(c, err, h.label, "删除")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.label + "已删除"})
}

// attachEventGallery 上传表单中的相册文件并作为新图片加入草稿，超出相册上限的文件不上传。
// 保存失败或图片未被保留时删除本次上传的图片
func (a *API) attachEventGallery(c *gin.Context, draft *db.Event) (func(saved *db.Event), error) {
	noop := func(*db.Event) {}
	files, closeFiles, err := formFiles(c, "gallery")
	if err != nil {
		return nil, err
	}
	defer closeFiles()
	if len(files) == 0 {
		return noop, nil
	}

	ctx := c.Request.Context()
	events := a.services.EventService
	slots := events.GallerySlots(ctx, draft.ID, draft.GalleryImages)
	if slots <= 0 {
		return noop, nil
	}
	if len(files) > slots {
		files = files[:slots]
	}

	uploaded := events.UploadGallery(ctx, files)
	draft.GalleryImages = append(draft.GalleryImages, uploaded...)
	return func(saved *db.Event) {
		kept := make(map[string]bool)
		if saved != nil {
			for _, url := range saved.GalleryImages {
				kept[url] = true
			}
		}
		for _, url := range uploaded {
			if !kept[url] {
				a.services.Uploader.Remove(ctx, url, storage.FolderEventGallery)
			}
		}
	}, nil
}

// RemoveEventGalleryImage removes one image from an event gallery.
func (a *API) RemoveEventGalleryImage(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		respondError(c, http.StatusBadRequest, "缺少图片地址")
		return
	}

	item, err := a.services.EventService.RemoveGalleryImage(c.Request.Context(), c.Param("id"), url)
	if err != nil {
		respondContentError(c, err, "活动", "更新")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "相册图片已移除", "item": item})
}
