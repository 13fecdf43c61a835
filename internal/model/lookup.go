package model

import "time"

// LookupKind 简单查找实体的种类
type LookupKind string

const (
	LookupTerm         LookupKind = "term"
	LookupAcademicYear LookupKind = "academic_year"
)

// Valid 是否为已知的查找实体种类
func (k LookupKind) Valid() bool {
	return k == LookupTerm || k == LookupAcademicYear
}

// Term 学期表，对应 terms，label 即自然键；只增不删
type Term struct {
	Label     string    `gorm:"type:varchar(50);primaryKey"        json:"label"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Term) TableName() string { return "terms" }

// AcademicYear 学年表，对应 academic_years，label 即自然键；只增不删
type AcademicYear struct {
	Label     string    `gorm:"type:varchar(50);primaryKey"        json:"label"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (AcademicYear) TableName() string { return "academic_years" }
