package model

import "time"

// Major 专业表，对应 majors
type Major struct {
	MajorID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"major_id"`
	Name      string    `gorm:"type:varchar(200);not null;uniqueIndex"         json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Major) TableName() string { return "majors" }

// Subject 课程表，对应 subjects，主键由教务系统提供
type Subject struct {
	SubjectID string    `gorm:"type:varchar(50);primaryKey"        json:"subject_id"`
	Name      string    `gorm:"type:varchar(255);not null"         json:"name"`
	MajorID   string    `gorm:"type:uuid;not null"                 json:"major_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	Major *Major `gorm:"foreignKey:MajorID;references:MajorID" json:"major,omitempty"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
