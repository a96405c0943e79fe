package db

import "time"

// Tag 表示可被多个项目共享的标签，名称唯一。
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}

// ProjectTag 项目与标签的关联表。
type ProjectTag struct {
	ProjectID uint `gorm:"primaryKey" json:"project_id"`
	TagID     uint `gorm:"primaryKey;index" json:"tag_id"`
}

// TableName 指定表名
func (ProjectTag) TableName() string {
	return "project_tags"
}

// TagUsage 标签及其关联的项目数量。
type TagUsage struct {
	Tag
	ProjectCount int64 `gorm:"column:project_count" json:"project_count"`
}
