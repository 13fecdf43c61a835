package dto

import "encoding/json"

// ── 课表只读查询 ──

// ClassListRequest 班级列表查询参数
type ClassListRequest struct {
	Year string `form:"year" binding:"required"`
	Term string `form:"term" binding:"required"`
}

// MajorResponse 专业
type MajorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubjectBrief 课程简要信息
type SubjectBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LecturerBrief 教师简要信息
type LecturerBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassResponse 教学班
type ClassResponse struct {
	ID               string          `json:"id"`
	ExternalClassID  string          `json:"external_class_id"`
	Type             string          `json:"type"`
	LearningSections json.RawMessage `json:"learning_sections"`
	Year             string          `json:"year"`
	Term             string          `json:"term"`
	Subject          *SubjectBrief   `json:"subject,omitempty"`
	Lecturer         *LecturerBrief  `json:"lecturer,omitempty"`
}

// ── 分页 ──

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 页码，缺省为 1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 每页数量，缺省 20，最大 100
func (p *PaginationRequest) GetPageSize() int {
	switch {
	case p.PageSize <= 0:
		return defaultPageSize
	case p.PageSize > maxPageSize:
		return maxPageSize
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
