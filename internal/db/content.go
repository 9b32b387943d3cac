package db

// TeamMember 定义委员会成员
type TeamMember struct {
	Model
	Name        string `gorm:"size:120;not null" json:"name"`
	Role        string `gorm:"size:120;not null" json:"role"`
	Department  string `gorm:"size:120;not null" json:"department"`
	Email       string `gorm:"size:255;not null" json:"email"`
	LinkedIn    string `gorm:"size:255" json:"linkedin,omitempty"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// TableName 返回成员表名
func (TeamMember) TableName() string { return "team_members" }

// Event 定义活动。
// Attendees 等字段只保存在本地侧表中，远端表尚未包含这些列。
type Event struct {
	Model
	Title         string   `gorm:"size:200;not null" json:"title"`
	Date          string   `gorm:"size:40;not null" json:"date"`
	Location      string   `gorm:"size:200;not null" json:"location"`
	Description   string   `gorm:"type:text;not null" json:"description"`
	Category      string   `gorm:"size:60" json:"category"`
	ImageURL      string   `gorm:"type:text" json:"image_url,omitempty"`
	IsLive        bool     `json:"is_live"`
	GalleryImages []string `gorm:"serializer:json;type:text" json:"gallery_images"`

	EventExtra `gorm:"-"`
}

// EventExtra 是活动在本地侧表中保存的扩展字段
type EventExtra struct {
	Attendees       *int     `gorm:"-" json:"attendees,omitempty"`
	Outcome         string   `gorm:"-" json:"outcome,omitempty"`
	GuestFeedback   string   `gorm:"-" json:"guest_feedback,omitempty"`
	StudentFeedback string   `gorm:"-" json:"student_feedback,omitempty"`
	Guests          []string `gorm:"-" json:"guests,omitempty"`
}

// IsZero 判断扩展字段是否全部为空
func (e EventExtra) IsZero() bool {
	return e.Attendees == nil && e.Outcome == "" && e.GuestFeedback == "" &&
		e.StudentFeedback == "" && len(e.Guests) == 0
}

// TableName 返回活动表名
func (Event) TableName() string { return "events" }

// Project 定义项目展示
type Project struct {
	Model
	Title        string   `gorm:"size:200;not null" json:"title"`
	Description  string   `gorm:"type:text;not null" json:"description"`
	Technologies []string `gorm:"serializer:json;type:text" json:"technologies"`
	GithubURL    string   `gorm:"size:255" json:"github_url,omitempty"`
	ProjectURL   string   `gorm:"size:255" json:"project_url,omitempty"`
	ImageURL     string   `gorm:"type:text" json:"image_url,omitempty"`
}

// TableName 返回项目表名
func (Project) TableName() string { return "projects" }

// GalleryImage 定义相册图片，宽高在上传时由服务端计算
type GalleryImage struct {
	Model
	Title       string `gorm:"size:200;not null" json:"title"`
	ImageURL    string `gorm:"type:text;not null" json:"image_url"`
	Category    string `gorm:"size:60" json:"category"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// TableName 返回相册表名
func (GalleryImage) TableName() string { return "gallery" }

// Announcement 定义公告
type Announcement struct {
	Model
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Category string `gorm:"size:60" json:"category"`
	Date     string `gorm:"size:40" json:"date"`
	ImageURL string `gorm:"type:text" json:"image_url,omitempty"`
}

// TableName 返回公告表名
func (Announcement) TableName() string { return "announcements" }

const (
	// AboutTypeSection 表示关于页的大段落
	AboutTypeSection = "section"
	// AboutTypeItem 表示关于页的条目
	AboutTypeItem = "item"
)

// AboutItem 定义关于页内容块
type AboutItem struct {
	Model
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Type        string `gorm:"size:20;not null;default:section" json:"type"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`
}

// TableName 返回关于页表名
func (AboutItem) TableName() string { return "about" }

// Message 是前台联系表单提交的留言，仅后台可读
type Message struct {
	Model
	Name    string `gorm:"size:120;not null" json:"name"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Subject string `gorm:"size:200;not null" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`
}

// TableName 返回留言表名
func (Message) TableName() string { return "messages" }
