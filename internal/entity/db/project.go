package db

import "time"

// Project 表示一个作品集项目，拥有截图并通过关联表引用标签。
type Project struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	LiveURL     *string   `gorm:"column:live_url;type:text" json:"live_url"`
	SourceURL   *string   `gorm:"column:source_url;type:text" json:"source_url"`

	Tags        []Tag        `gorm:"many2many:project_tags;foreignKey:ID;joinForeignKey:ProjectID;references:ID;joinReferences:TagID" json:"tags"`
	Screenshots []Screenshot `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"screenshots"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// Screenshot 项目截图，排序由 SortOrder 决定。
type Screenshot struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	ProjectID uint    `gorm:"column:project_id;not null;index:idx_screenshot_project_order,priority:1" json:"project_id"`
	URL       string  `gorm:"column:url;type:text;not null" json:"url"`
	AltText   *string `gorm:"column:alt_text;type:varchar(500)" json:"alt_text"`
	SortOrder int     `gorm:"column:sort_order;not null;default:0;index:idx_screenshot_project_order,priority:2" json:"sort_order"`
}

// TableName 指定表名
func (Screenshot) TableName() string {
	return "screenshots"
}

// ProjectQuery filters and pages project listings. Title is a case-sensitive
// substring match, Tag an exact tag name match.
type ProjectQuery struct {
	Page     int
	PageSize int
	Title    string
	Tag      string
}

// ProjectFields are the scalar columns overwritten by a full update. Nil URLs
// are written as NULL.
type ProjectFields struct {
	Title       string
	Description string
	LiveURL     *string
	SourceURL   *string
}
