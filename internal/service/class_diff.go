package service

import (
	"bytes"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
)

// classPlan 一次班级同步的分区结果
type classPlan struct {
	toCreate          []model.Class
	toUpdate          []model.ClassLecturerChange
	unchanged         []string
	warnings          []dto.SyncWarning
	skippedUnresolved int
	skippedInvalid    int
	duplicateKeys     int
}

// planClassSync 将抓取记录与已持久化班级按 externalClassId 比对并分区
//
//   - 同一 externalClassId 出现多次时以最后一次为准，并产生 duplicate_key 告警
//   - externalClassId 或 subjectId 为空的记录跳过（invalid_record）
//   - 教师姓名为空或不在 lecturerIDs 中的记录跳过（unresolved_lecturer）
//   - 已存在且教师相同的记录不产生任何写入
//
// 纯函数，不访问数据库。
func planClassSync(records []dto.ClassRecord, existing map[string]model.Class, lecturerIDs map[string]string, term, year string) classPlan {
	var plan classPlan

	last := make(map[string]int, len(records))
	occurrences := make(map[string]int, len(records))
	for i, rec := range records {
		id := strings.TrimSpace(rec.ExternalClassID)
		if id == "" {
			continue
		}
		last[id] = i
		occurrences[id]++
	}

	for i, rec := range records {
		id := strings.TrimSpace(rec.ExternalClassID)
		if id == "" {
			plan.skippedInvalid++
			plan.warnings = append(plan.warnings, dto.SyncWarning{
				Kind:   dto.WarningInvalidRecord,
				Detail: fmt.Sprintf("第 %d 条记录缺少 externalClassId", i+1),
			})
			continue
		}
		if last[id] != i {
			continue
		}
		if n := occurrences[id]; n > 1 {
			plan.duplicateKeys++
			plan.warnings = append(plan.warnings, dto.SyncWarning{
				ExternalClassID: id,
				Kind:            dto.WarningDuplicateKey,
				Detail:          fmt.Sprintf("出现 %d 次，以最后一次为准", n),
			})
		}

		subjectID := strings.TrimSpace(rec.SubjectID)
		if subjectID == "" {
			plan.skippedInvalid++
			plan.warnings = append(plan.warnings, dto.SyncWarning{
				ExternalClassID: id,
				Kind:            dto.WarningInvalidRecord,
				Detail:          "缺少 subjectId",
			})
			continue
		}

		name := normalizeName(rec.LecturerName)
		lecturerID, ok := lecturerIDs[name]
		if name == "" || !ok {
			plan.skippedUnresolved++
			plan.warnings = append(plan.warnings, dto.SyncWarning{
				ExternalClassID: id,
				Kind:            dto.WarningUnresolvedLecturer,
				Detail:          fmt.Sprintf("教师 %q 无法解析", rec.LecturerName),
			})
			continue
		}

		current, found := existing[id]
		switch {
		case !found:
			plan.toCreate = append(plan.toCreate, model.Class{
				ExternalClassID:  id,
				Type:             rec.Type,
				LearningSections: learningSections(rec.LearningSections),
				SubjectID:        subjectID,
				TermLabel:        term,
				YearLabel:        year,
				LecturerID:       lecturerID,
			})
		case current.LecturerID != lecturerID:
			oldName := ""
			if current.Lecturer != nil {
				oldName = current.Lecturer.Name
			}
			plan.toUpdate = append(plan.toUpdate, model.ClassLecturerChange{
				ClassID:         current.ClassID,
				ExternalClassID: id,
				TermLabel:       term,
				YearLabel:       year,
				OldLecturerID:   current.LecturerID,
				NewLecturerID:   lecturerID,
				OldLecturerName: oldName,
				NewLecturerName: name,
			})
		default:
			plan.unchanged = append(plan.unchanged, id)
		}
	}
	return plan
}

// learningSections 缺省或 null 的上课安排按空数组入库
func learningSections(raw []byte) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("[]")
	}
	out := make([]byte, len(trimmed))
	copy(out, trimmed)
	return datatypes.JSON(out)
}
