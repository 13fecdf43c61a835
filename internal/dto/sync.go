package dto

import "time"

// ── 幂等导入结果 ──

// ImportOutcome 单条幂等导入的结果
type ImportOutcome string

const (
	OutcomeCreated       ImportOutcome = "created"
	OutcomeAlreadyExists ImportOutcome = "already_exists"
	OutcomeFailed        ImportOutcome = "failed"
)

// ItemResult 单条导入结果
type ItemResult struct {
	Key     string        `json:"key"`
	Outcome ImportOutcome `json:"outcome"`
	Reason  string        `json:"reason,omitempty"`
}

// ImportReport 一批幂等导入的汇总
type ImportReport struct {
	Kind          string       `json:"kind"`
	Created       int          `json:"created"`
	AlreadyExists int          `json:"already_exists"`
	Failed        int          `json:"failed"`
	Items         []ItemResult `json:"items,omitempty"`
}

// Add 记录一条结果并累加计数
func (r *ImportReport) Add(key string, outcome ImportOutcome, err error) {
	item := ItemResult{Key: key, Outcome: outcome}
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeAlreadyExists:
		r.AlreadyExists++
	case OutcomeFailed:
		r.Failed++
		if err != nil {
			item.Reason = err.Error()
		}
	}
	r.Items = append(r.Items, item)
}

// ── 班级同步报告 ──

// BatchResult 单个写入批次的结果
type BatchResult struct {
	Attempted int    `json:"attempted"`
	Failed    bool   `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// LecturerChange 一次教师变更（审计轨迹）
type LecturerChange struct {
	ExternalClassID string `json:"external_class_id"`
	Term            string `json:"term"`
	Year            string `json:"year"`
	OldLecturer     string `json:"old_lecturer"`
	NewLecturer     string `json:"new_lecturer"`
}

// SyncWarning 数据质量告警（不影响本次同步的其余记录）
type SyncWarning struct {
	ExternalClassID string `json:"external_class_id"`
	Kind            string `json:"kind"` // duplicate_key | unresolved_lecturer | invalid_record
	Detail          string `json:"detail"`
}

// 告警类型
const (
	WarningDuplicateKey       = "duplicate_key"
	WarningUnresolvedLecturer = "unresolved_lecturer"
	WarningInvalidRecord      = "invalid_record"
)

// SyncReport 一次班级同步的结果
type SyncReport struct {
	Year              string           `json:"year"`
	Term              string           `json:"term"`
	Received          int              `json:"received"`
	Created           int              `json:"created"`
	Updated           int              `json:"updated"`
	Unchanged         int              `json:"unchanged"`
	SkippedUnresolved int              `json:"skipped_unresolved"`
	SkippedInvalid    int              `json:"skipped_invalid"`
	DuplicateKeys     int              `json:"duplicate_keys"`
	CreateBatch       BatchResult      `json:"create_batch"`
	UpdateBatch       BatchResult      `json:"update_batch"`
	Changes           []LecturerChange `json:"changes"`
	Warnings          []SyncWarning    `json:"warnings,omitempty"`
}

// Partial 是否存在失败的写入批次
func (r *SyncReport) Partial() bool {
	return r.CreateBatch.Failed || r.UpdateBatch.Failed
}

// ── 快照导入响应 ──

// ImportSnapshotResponse 一次完整快照导入的结果
type ImportSnapshotResponse struct {
	SyncRunID string        `json:"sync_run_id"`
	Status    string        `json:"status"`
	Terms     *ImportReport `json:"terms"`
	Years     *ImportReport `json:"years"`
	Weeks     *ImportReport `json:"weeks"`
	Subjects  *ImportReport `json:"subjects"`
	Classes   *SyncReport   `json:"classes"`
	Duration  string        `json:"duration"`
}

// ── 运行记录 / 审计查询 ──

// SyncScopeRequest 按 (学年, 学期) 分页查询
type SyncScopeRequest struct {
	Year string `form:"year"`
	Term string `form:"term"`
	PaginationRequest
}

// SyncRunResponse 同步运行记录
type SyncRunResponse struct {
	ID                string    `json:"id"`
	Year              string    `json:"year"`
	Term              string    `json:"term"`
	Status            string    `json:"status"`
	TriggeredBy       string    `json:"triggered_by"`
	Received          int       `json:"received"`
	Created           int       `json:"created"`
	Updated           int       `json:"updated"`
	Unchanged         int       `json:"unchanged"`
	SkippedUnresolved int       `json:"skipped_unresolved"`
	SkippedInvalid    int       `json:"skipped_invalid"`
	DuplicateKeys     int       `json:"duplicate_keys"`
	Error             string    `json:"error,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// LecturerChangeResponse 教师变更日志
type LecturerChangeResponse struct {
	ID              string    `json:"id"`
	ExternalClassID string    `json:"external_class_id"`
	Year            string    `json:"year"`
	Term            string    `json:"term"`
	OldLecturer     string    `json:"old_lecturer"`
	NewLecturer     string    `json:"new_lecturer"`
	ChangedAt       time.Time `json:"changed_at"`
}
