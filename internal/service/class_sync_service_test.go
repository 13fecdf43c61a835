package service

import (
	"context"
	"errors"
	"testing"

	"uni-portal/backend/internal/dto"
	pkgerrors "uni-portal/backend/pkg/errors"
)

const (
	testYear = "2024-2025"
	testTerm = "1"
)

func classRec(id, lecturer string) dto.ClassRecord {
	return dto.ClassRecord{ExternalClassID: id, Type: "LT", SubjectID: "CS101", LecturerName: lecturer}
}

// ── 参数校验 ──

func TestClassSynchronizer_ScopeRequired(t *testing.T) {
	svc := newTestSynchronizer(newTestRepos())
	ctx := context.Background()

	if _, err := svc.Synchronize(ctx, nil, "", testTerm); !errors.Is(err, ErrSyncYearRequired) {
		t.Errorf("期望 ErrSyncYearRequired，实际: %v", err)
	}
	if _, err := svc.Synchronize(ctx, nil, testYear, " "); !errors.Is(err, ErrSyncTermRequired) {
		t.Errorf("期望 ErrSyncTermRequired，实际: %v", err)
	}
}

// ── 新增 / 改派 / 不变 ──

func TestClassSynchronizer_DiffCorrectness(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)
	lectA := r.lecturers.seed("A")
	r.classes.seed("C1", testTerm, testYear, lectA)
	r.classes.seed("C2", testTerm, testYear, lectA)
	// 其他学期的同编号班级不受影响
	r.classes.seed("C2", "2", testYear, lectA)

	report, err := svc.Synchronize(context.Background(), []dto.ClassRecord{
		classRec("C1", "A"),
		classRec("C2", "B"),
		classRec("C3", "B"),
	}, testYear, testTerm)
	if err != nil {
		t.Fatalf("Synchronize 应成功: %v", err)
	}

	if report.Created != 1 || report.Updated != 1 || report.Unchanged != 1 {
		t.Errorf("期望 created=1 updated=1 unchanged=1，实际 %d/%d/%d", report.Created, report.Updated, report.Unchanged)
	}

	lectB := r.lecturers.lecturers["B"].LecturerID
	if c := r.classes.find("C2", testTerm, testYear); c.LecturerID != lectB {
		t.Errorf("C2 应改派给 B，实际=%s", c.LecturerID)
	}
	if c := r.classes.find("C3", testTerm, testYear); c == nil || c.LecturerID != lectB {
		t.Error("C3 应新建并分配给 B")
	}
	if c := r.classes.find("C1", testTerm, testYear); c.LecturerID != lectA {
		t.Error("C1 不应被修改")
	}
	if c := r.classes.find("C2", "2", testYear); c.LecturerID != lectA {
		t.Error("其他学期的班级不应被修改")
	}

	if len(report.Changes) != 1 {
		t.Fatalf("期望 1 条教师变更，实际=%d", len(report.Changes))
	}
	change := report.Changes[0]
	if change.ExternalClassID != "C2" || change.OldLecturer != "A" || change.NewLecturer != "B" {
		t.Errorf("教师变更记录错误: %+v", change)
	}
	if len(r.classes.changes) != 1 {
		t.Errorf("审计日志应写入 1 条，实际=%d", len(r.classes.changes))
	}
}

// ── 重复执行无写入 ──

func TestClassSynchronizer_IdenticalRerunIsNoop(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)
	records := []dto.ClassRecord{classRec("C1", "A"), classRec("C2", "B"), classRec("C3", "A")}
	ctx := context.Background()

	if _, err := svc.Synchronize(ctx, records, testYear, testTerm); err != nil {
		t.Fatalf("首次同步应成功: %v", err)
	}
	createCalls, reassignCalls := r.classes.createCalls, r.classes.reassignCalls

	report, err := svc.Synchronize(ctx, records, testYear, testTerm)
	if err != nil {
		t.Fatalf("再次同步应成功: %v", err)
	}
	if report.Created != 0 || report.Updated != 0 {
		t.Errorf("相同快照再次同步不应有写入，实际 created=%d updated=%d", report.Created, report.Updated)
	}
	if report.Unchanged != 3 {
		t.Errorf("期望 unchanged=3，实际=%d", report.Unchanged)
	}
	if r.classes.createCalls != createCalls || r.classes.reassignCalls != reassignCalls {
		t.Error("相同快照再次同步不应调用任何写入")
	}
	if r.classes.count() != 3 {
		t.Errorf("期望 3 个班级，实际=%d", r.classes.count())
	}
}

// ── 教师去重 ──

func TestClassSynchronizer_LecturerDedup(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)

	records := make([]dto.ClassRecord, 0, 5)
	for _, id := range []string{"C1", "C2", "C3", "C4", "C5"} {
		records = append(records, classRec(id, "Phạm Văn D"))
	}
	if _, err := svc.Synchronize(context.Background(), records, testYear, testTerm); err != nil {
		t.Fatalf("Synchronize 应成功: %v", err)
	}

	if len(r.lecturers.lecturers) != 1 {
		t.Fatalf("同名教师只应创建一次，实际=%d", len(r.lecturers.lecturers))
	}
	want := r.lecturers.lecturers["Phạm Văn D"].LecturerID
	for _, c := range r.classes.list(testTerm, testYear) {
		if c.LecturerID != want {
			t.Errorf("班级 %s 教师应为 %s，实际=%s", c.ExternalClassID, want, c.LecturerID)
		}
	}
}

// ── 快照内重复编号 ──

func TestClassSynchronizer_DuplicateKeyLastWins(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)

	report, err := svc.Synchronize(context.Background(), []dto.ClassRecord{
		classRec("X", "A"),
		classRec("X", "B"),
	}, testYear, testTerm)
	if err != nil {
		t.Fatalf("Synchronize 应成功: %v", err)
	}

	if r.classes.count() != 1 {
		t.Fatalf("期望仅 1 个班级 X，实际=%d", r.classes.count())
	}
	if c := r.classes.find("X", testTerm, testYear); c.LecturerID != r.lecturers.lecturers["B"].LecturerID {
		t.Error("班级 X 的教师应取最后一次出现的 B")
	}
	if report.DuplicateKeys != 1 {
		t.Errorf("期望 duplicate_keys=1，实际=%d", report.DuplicateKeys)
	}
	found := false
	for _, w := range report.Warnings {
		if w.Kind == dto.WarningDuplicateKey && w.ExternalClassID == "X" {
			found = true
		}
	}
	if !found {
		t.Error("报告应包含 X 的 duplicate_key 告警")
	}
}

// ── 改派事务全有或全无 ──

func TestClassSynchronizer_UpdateBatchAllOrNothing(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)
	lectA := r.lecturers.seed("A")
	lectOther := r.lecturers.seed("Other")
	id1 := r.classes.seed("C1", testTerm, testYear, lectA)
	r.classes.seed("C2", testTerm, testYear, lectA)
	id3 := r.classes.seed("C3", testTerm, testYear, lectA)

	// 比对之后、事务之前，C3 被其他写入方改派
	r.classes.beforeReassign = func() { r.classes.setLecturer(id3, lectOther) }

	report, err := svc.Synchronize(context.Background(), []dto.ClassRecord{
		classRec("C1", "B"),
		classRec("C2", "B"),
		classRec("C3", "B"),
		classRec("C9", "B"),
	}, testYear, testTerm)

	if !errors.Is(err, ErrSyncBatchFailed) {
		t.Fatalf("期望 ErrSyncBatchFailed，实际: %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("错误链应包含 ErrOptimisticLock，实际: %v", err)
	}
	if report == nil {
		t.Fatal("批次失败时仍应返回报告")
	}
	if !report.UpdateBatch.Failed || report.UpdateBatch.Attempted != 3 {
		t.Errorf("改派批次应标记失败，实际 %+v", report.UpdateBatch)
	}
	if report.Updated != 0 || len(report.Changes) != 0 {
		t.Errorf("改派回滚后不应报告任何变更，实际 updated=%d changes=%d", report.Updated, len(report.Changes))
	}

	// 全部保持原教师
	if c := r.classes.find("C1", testTerm, testYear); c.ClassID != id1 || c.LecturerID != lectA {
		t.Error("C1 应保持原教师")
	}
	if c := r.classes.find("C2", testTerm, testYear); c.LecturerID != lectA {
		t.Error("C2 应保持原教师")
	}
	if len(r.classes.changes) != 0 {
		t.Error("回滚后不应写入审计日志")
	}

	// 新增批次互不影响
	if report.CreateBatch.Failed || report.Created != 1 {
		t.Errorf("新增批次应成功，实际 %+v created=%d", report.CreateBatch, report.Created)
	}
	if r.classes.find("C9", testTerm, testYear) == nil {
		t.Error("C9 应已创建")
	}
}

func TestClassSynchronizer_CreateBatchFailure(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)
	lectA := r.lecturers.seed("A")
	r.classes.seed("C1", testTerm, testYear, lectA)
	r.classes.createErr = errors.New("foreign key violation")

	report, err := svc.Synchronize(context.Background(), []dto.ClassRecord{
		classRec("C1", "B"),
		classRec("C2", "B"),
	}, testYear, testTerm)

	if !errors.Is(err, ErrSyncBatchFailed) {
		t.Fatalf("期望 ErrSyncBatchFailed，实际: %v", err)
	}
	if !report.CreateBatch.Failed || report.CreateBatch.Error == "" {
		t.Errorf("新增批次应标记失败，实际 %+v", report.CreateBatch)
	}
	if report.Created != 0 {
		t.Errorf("新增失败时 created 应为 0，实际=%d", report.Created)
	}
	if report.Updated != 1 {
		t.Errorf("改派批次应照常完成，实际 updated=%d", report.Updated)
	}
	if !report.Partial() {
		t.Error("存在失败批次时 Partial() 应为 true")
	}
}

// ── 致命错误 ──

func TestClassSynchronizer_UnresolvedLecturerIsFatal(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)
	r.lecturers.dropOnBatch = true

	report, err := svc.Synchronize(context.Background(), []dto.ClassRecord{classRec("C1", "Ghost")}, testYear, testTerm)
	if !errors.Is(err, ErrLecturerUnresolved) {
		t.Fatalf("期望 ErrLecturerUnresolved，实际: %v", err)
	}
	if report != nil {
		t.Error("致命错误时不应返回报告")
	}
	if r.classes.createCalls != 0 {
		t.Error("致命错误时不应写入班级")
	}
}

func TestClassSynchronizer_SkipsUnresolvableRecords(t *testing.T) {
	r := newTestRepos()
	svc := newTestSynchronizer(r)

	report, err := svc.Synchronize(context.Background(), []dto.ClassRecord{
		classRec("C1", ""),
		classRec("", "A"),
		classRec("C2", "A"),
	}, testYear, testTerm)
	if err != nil {
		t.Fatalf("Synchronize 应成功: %v", err)
	}
	if report.SkippedUnresolved != 1 || report.SkippedInvalid != 1 || report.Created != 1 {
		t.Errorf("期望 unresolved=1 invalid=1 created=1，实际 %d/%d/%d",
			report.SkippedUnresolved, report.SkippedInvalid, report.Created)
	}
	if report.Received != 3 {
		t.Errorf("期望 received=3，实际=%d", report.Received)
	}
}
