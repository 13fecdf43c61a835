package model

import "time"

// Lecturer 教师表，对应 lecturers
// name 作为去重依据；改名会产生新的教师记录
type Lecturer struct {
	LecturerID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lecturer_id"`
	Name       string    `gorm:"type:varchar(200);not null;uniqueIndex"         json:"name"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Lecturer) TableName() string { return "lecturers" }
