package model

import "time"

// 同步运行状态
const (
	SyncStatusSucceeded = "succeeded"
	SyncStatusPartial   = "partial" // 至少一个批次失败
	SyncStatusFailed    = "failed"  // 致命错误，未进入写入阶段或中途终止
)

// SyncRun 同步运行记录表，对应 sync_runs
type SyncRun struct {
	SyncRunID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sync_run_id"`
	TermLabel         string    `gorm:"type:varchar(50);not null"                      json:"term_label"`
	YearLabel         string    `gorm:"type:varchar(50);not null"                      json:"year_label"`
	Status            string    `gorm:"type:varchar(20);not null"                      json:"status"`
	TriggeredBy       string    `gorm:"type:varchar(100);not null;default:''"          json:"triggered_by"`
	ReceivedCount     int       `gorm:"not null;default:0"                             json:"received_count"`
	CreatedCount      int       `gorm:"not null;default:0"                             json:"created_count"`
	UpdatedCount      int       `gorm:"not null;default:0"                             json:"updated_count"`
	UnchangedCount    int       `gorm:"not null;default:0"                             json:"unchanged_count"`
	SkippedUnresolved int       `gorm:"not null;default:0"                             json:"skipped_unresolved"`
	SkippedInvalid    int       `gorm:"not null;default:0"                             json:"skipped_invalid"`
	DuplicateKeys     int       `gorm:"not null;default:0"                             json:"duplicate_keys"`
	ErrorMessage      string    `gorm:"type:text;not null;default:''"                  json:"error_message,omitempty"`
	StartedAt         time.Time `gorm:"not null"                                       json:"started_at"`
	FinishedAt        time.Time `gorm:"not null"                                       json:"finished_at"`
}

// TableName 指定表名
func (SyncRun) TableName() string { return "sync_runs" }
