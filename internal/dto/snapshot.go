package dto

import "encoding/json"

// ── 抓取快照（外部抓取程序的输出即本服务的输入契约） ──

// Snapshot 一次抓取得到的某 (学年, 学期) 完整课表快照
type Snapshot struct {
	Year     string          `json:"year"     binding:"required"`
	Term     string          `json:"term"     binding:"required"`
	Terms    []string        `json:"terms,omitempty"`
	Years    []string        `json:"years,omitempty"`
	Weeks    []WeekRecord    `json:"weeks,omitempty"`
	Subjects []SubjectRecord `json:"subjects,omitempty"`
	Classes  []ClassRecord   `json:"classes"`
}

// WeekRecord 教学周
type WeekRecord struct {
	WeekValue   int    `json:"weekValue"`
	DisplayName string `json:"displayName"`
	Term        string `json:"term"`
	Year        string `json:"year"`
}

// SubjectRecord 课程；Major 为空时归入占位专业
type SubjectRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Major string `json:"major,omitempty"`
}

// ClassRecord 教学班
// LearningSections 为不透明载荷（[{weekDay, ...}]），原样入库
type ClassRecord struct {
	ExternalClassID  string          `json:"externalClassId"`
	Type             string          `json:"type"`
	LearningSections json.RawMessage `json:"learningSections"`
	SubjectID        string          `json:"subjectId"`
	LecturerName     string          `json:"lecturerName"`
}
