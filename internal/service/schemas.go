package service

import (
	"strings"
	"time"

	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/storage"
)

// 分类默认值与可选项
const (
	DefaultGalleryCategory      = "Events"
	DefaultEventCategory        = "Talk"
	DefaultAnnouncementCategory = "Opportunity"

	// MaxGalleryImages 是单个活动相册的图片上限
	MaxGalleryImages = 10
	// MaxGuests 是单个活动嘉宾数量上限
	MaxGuests = 10
)

var (
	GalleryCategories = []string{"Events", "Workshops", "Achievements", "Campus", "Team"}
	EventCategories   = []string{"Talk", "Workshop", "Hackathon", "Panel"}
)

// TeamSchema 定义成员表单规则
func TeamSchema() crud.Schema[db.TeamMember] {
	return crud.Schema[db.TeamMember]{
		Name:   "team",
		Folder: storage.FolderTeam,
		Normalize: func(m *db.TeamMember) {
			m.Name = strings.TrimSpace(m.Name)
			m.Role = strings.TrimSpace(m.Role)
			m.Department = strings.TrimSpace(m.Department)
			m.Email = strings.TrimSpace(m.Email)
			m.LinkedIn = strings.TrimSpace(m.LinkedIn)
		},
		Validate: func(m *db.TeamMember, _ bool) error {
			return crud.Require(
				crud.Field{Name: "name", Value: m.Name},
				crud.Field{Name: "role", Value: m.Role},
				crud.Field{Name: "department", Value: m.Department},
				crud.Field{Name: "email", Value: m.Email},
			)
		},
		Image: func(m *db.TeamMember) *string { return &m.ImageURL },
	}
}

// EventSchema 定义活动表单规则。编辑时新上传的相册图片追加到已有图片之后。
func EventSchema() crud.Schema[db.Event] {
	return crud.Schema[db.Event]{
		Name:   "events",
		Folder: storage.FolderEvents,
		Normalize: func(e *db.Event) {
			e.Title = strings.TrimSpace(e.Title)
			e.Date = strings.TrimSpace(e.Date)
			e.Location = strings.TrimSpace(e.Location)
			if strings.TrimSpace(e.Category) == "" {
				e.Category = DefaultEventCategory
			}
			e.GalleryImages = MergeGallery(nil, e.GalleryImages)
			e.EventExtra = NormalizeExtra(e.EventExtra)
		},
		Validate: func(e *db.Event, _ bool) error {
			return crud.Require(
				crud.Field{Name: "title", Value: e.Title},
				crud.Field{Name: "date", Value: e.Date},
				crud.Field{Name: "location", Value: e.Location},
				crud.Field{Name: "description", Value: e.Description},
			)
		},
		Image: func(e *db.Event) *string { return &e.ImageURL },
		Merge: func(draft, current *db.Event) {
			draft.GalleryImages = MergeGallery(current.GalleryImages, draft.GalleryImages)
		},
	}
}

// ProjectSchema 定义项目表单规则
func ProjectSchema() crud.Schema[db.Project] {
	return crud.Schema[db.Project]{
		Name:   "projects",
		Folder: storage.FolderProjects,
		Normalize: func(p *db.Project) {
			p.Title = strings.TrimSpace(p.Title)
			p.GithubURL = strings.TrimSpace(p.GithubURL)
			p.ProjectURL = strings.TrimSpace(p.ProjectURL)
			p.Technologies = ParseTechnologies(p.Technologies...)
		},
		Validate: func(p *db.Project, _ bool) error {
			return crud.Require(
				crud.Field{Name: "title", Value: p.Title},
				crud.Field{Name: "description", Value: p.Description},
			)
		},
		Image: func(p *db.Project) *string { return &p.ImageURL },
	}
}

// GallerySchema 定义相册表单规则，图片必填
func GallerySchema() crud.Schema[db.GalleryImage] {
	return crud.Schema[db.GalleryImage]{
		Name:   "gallery",
		Folder: storage.FolderGallery,
		Normalize: func(g *db.GalleryImage) {
			g.Title = strings.TrimSpace(g.Title)
			if strings.TrimSpace(g.Category) == "" {
				g.Category = DefaultGalleryCategory
			}
		},
		Validate: func(g *db.GalleryImage, hasImage bool) error {
			if err := crud.Require(crud.Field{Name: "title", Value: g.Title}); err != nil {
				return err
			}
			if !hasImage {
				return &crud.ValidationError{Fields: []string{"image"}}
			}
			return nil
		},
		Image: func(g *db.GalleryImage) *string { return &g.ImageURL },
		OnUpload: func(g *db.GalleryImage, asset storage.Asset) {
			g.Width, g.Height = asset.Width, asset.Height
		},
		// 未更换图片时保留原有宽高
		Merge: func(draft, current *db.GalleryImage) {
			if url := strings.TrimSpace(draft.ImageURL); url == "" || url == current.ImageURL {
				draft.Width, draft.Height = current.Width, current.Height
			}
		},
	}
}

// AnnouncementSchema 定义公告表单规则，每次保存都刷新日期
func AnnouncementSchema(now func() time.Time) crud.Schema[db.Announcement] {
	if now == nil {
		now = time.Now
	}
	return crud.Schema[db.Announcement]{
		Name:   "announcements",
		Folder: storage.FolderAnnouncements,
		Normalize: func(a *db.Announcement) {
			a.Title = strings.TrimSpace(a.Title)
			if strings.TrimSpace(a.Category) == "" {
				a.Category = DefaultAnnouncementCategory
			}
			a.Date = now().Format("2006-01-02")
		},
		Validate: func(a *db.Announcement, _ bool) error {
			return crud.Require(
				crud.Field{Name: "title", Value: a.Title},
				crud.Field{Name: "content", Value: a.Content},
			)
		},
		Image: func(a *db.Announcement) *string { return &a.ImageURL },
	}
}

// AboutSchema 定义关于页表单规则
func AboutSchema() crud.Schema[db.AboutItem] {
	return crud.Schema[db.AboutItem]{
		Name:   "about",
		Folder: storage.FolderAbout,
		Normalize: func(a *db.AboutItem) {
			a.Title = strings.TrimSpace(a.Title)
			if a.Type != db.AboutTypeItem {
				a.Type = db.AboutTypeSection
			}
		},
		Validate: func(a *db.AboutItem, _ bool) error {
			return crud.Require(
				crud.Field{Name: "title", Value: a.Title},
				crud.Field{Name: "description", Value: a.Description},
			)
		},
		Image: func(a *db.AboutItem) *string { return &a.ImageURL },
	}
}

// ParseTechnologies 接受数组或逗号分隔的字符串，返回去空白、去重后的列表
func ParseTechnologies(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			tech := strings.TrimSpace(part)
			if tech == "" || seen[strings.ToLower(tech)] {
				continue
			}
			seen[strings.ToLower(tech)] = true
			out = append(out, tech)
		}
	}
	return out
}

// MergeGallery 将新图片追加到已有图片之后，最多保留 MaxGalleryImages 张
func MergeGallery(existing, added []string) []string {
	out := make([]string, 0, MaxGalleryImages)
	seen := make(map[string]bool)
	for _, list := range [][]string{existing, added} {
		for _, url := range list {
			url = strings.TrimSpace(url)
			if url == "" || seen[url] {
				continue
			}
			if len(out) == MaxGalleryImages {
				return out
			}
			seen[url] = true
			out = append(out, url)
		}
	}
	return out
}

// NormalizeExtra 过滤空白嘉宾并限制数量，清理文本字段
func NormalizeExtra(extra db.EventExtra) db.EventExtra {
	guests := make([]string, 0, len(extra.Guests))
	for _, guest := range extra.Guests {
		guest = strings.TrimSpace(guest)
		if guest == "" {
			continue
		}
		guests = append(guests, guest)
		if len(guests) == MaxGuests {
			break
		}
	}
	if len(guests) == 0 {
		guests = nil
	}
	extra.Guests = guests
	extra.Outcome = strings.TrimSpace(extra.Outcome)
	extra.GuestFeedback = strings.TrimSpace(extra.GuestFeedback)
	extra.StudentFeedback = strings.TrimSpace(extra.StudentFeedback)
	if extra.Attendees != nil && *extra.Attendees < 0 {
		extra.Attendees = nil
	}
	return extra
}
