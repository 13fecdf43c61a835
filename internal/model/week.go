package model

import "time"

// Week 教学周表，对应 weeks
// 自然键 (week_value, term_label, year_label)
type Week struct {
	WeekID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"week_id"`
	WeekValue int       `gorm:"not null;uniqueIndex:uq_weeks_natural_key,priority:1"    json:"week_value"`
	WeekName  string    `gorm:"type:varchar(100);not null;default:''"                   json:"week_name"`
	TermLabel string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_weeks_natural_key,priority:2" json:"term_label"`
	YearLabel string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_weeks_natural_key,priority:3" json:"year_label"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"created_at"`
}

// TableName 指定表名
func (Week) TableName() string { return "weeks" }
