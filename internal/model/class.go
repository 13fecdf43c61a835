package model

import (
	"time"

	"gorm.io/datatypes"
)

// Class 教学班表，对应 classes
// 自然键 (external_class_id, term_label, year_label)；创建后只会修改 lecturer_id
type Class struct {
	ClassID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                                   json:"class_id"`
	ExternalClassID  string         `gorm:"type:varchar(50);not null;uniqueIndex:uq_classes_natural_key,priority:1"          json:"external_class_id"`
	Type             string         `gorm:"type:varchar(50);not null;default:''"                                             json:"type"`
	LearningSections datatypes.JSON `gorm:"type:jsonb;not null"                                                              json:"learning_sections"` // 原样保存抓取结果
	SubjectID        string         `gorm:"type:varchar(50);not null"                                                        json:"subject_id"`
	TermLabel        string         `gorm:"type:varchar(50);not null;uniqueIndex:uq_classes_natural_key,priority:2"          json:"term_label"`
	YearLabel        string         `gorm:"type:varchar(50);not null;uniqueIndex:uq_classes_natural_key,priority:3"          json:"year_label"`
	LecturerID       string         `gorm:"type:uuid;not null"                                                               json:"lecturer_id"`
	Timestamps

	// 关联
	Subject  *Subject  `gorm:"foreignKey:SubjectID;references:SubjectID"   json:"subject,omitempty"`
	Lecturer *Lecturer `gorm:"foreignKey:LecturerID;references:LecturerID" json:"lecturer,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// ClassLecturerChange 教师变更日志表，对应 class_lecturer_changes（纯审计日志）
type ClassLecturerChange struct {
	ChangeID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_id"`
	ClassID         string    `gorm:"type:uuid;not null"                             json:"class_id"`
	ExternalClassID string    `gorm:"type:varchar(50);not null"                      json:"external_class_id"`
	TermLabel       string    `gorm:"type:varchar(50);not null"                      json:"term_label"`
	YearLabel       string    `gorm:"type:varchar(50);not null"                      json:"year_label"`
	OldLecturerID   string    `gorm:"type:uuid;not null"                             json:"old_lecturer_id"`
	NewLecturerID   string    `gorm:"type:uuid;not null"                             json:"new_lecturer_id"`
	OldLecturerName string    `gorm:"type:varchar(200);not null;default:''"          json:"old_lecturer_name"`
	NewLecturerName string    `gorm:"type:varchar(200);not null;default:''"          json:"new_lecturer_name"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ClassLecturerChange) TableName() string { return "class_lecturer_changes" }
