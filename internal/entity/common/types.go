package common

import "math"

// Meta 包含分页元数据。
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta 根据总数和分页参数计算分页元数据。pageSize 必须为正数。
func NewMeta(total int64, page, pageSize int) Meta {
	meta := Meta{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// Offset returns the number of rows to skip for the page window. It
// saturates at math.MaxInt instead of overflowing.
func (m Meta) Offset() int {
	if m.Page <= 1 || m.PageSize <= 0 {
		return 0
	}
	if m.Page-1 > math.MaxInt/m.PageSize {
		return math.MaxInt
	}
	return (m.Page - 1) * m.PageSize
}

// PastEnd 页码超过最后一页时为 true，此时不需要再查询数据
func (m Meta) PastEnd() bool {
	return m.Page > m.TotalPages
}

// BaseParams 包含通用的分页参数。指针区分"未传"和显式传 0，后者要被拒绝。
type BaseParams struct {
	Page     *int `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize *int `json:"pageSize" form:"pageSize" binding:"omitempty,min=1,max=100"`
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Resolve returns the paging values with defaults applied to unset fields.
func (p BaseParams) Resolve() (page, pageSize int) {
	page, pageSize = DefaultPage, DefaultPageSize
	if p.Page != nil {
		page = *p.Page
	}
	if p.PageSize != nil {
		pageSize = *p.PageSize
	}
	return page, pageSize
}
