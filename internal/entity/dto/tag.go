package dto

// TagResponse 标签及其被引用的项目数。
type TagResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProjectCount int64  `json:"projectCount"`
}
