package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func setupTestLecturerRegistry() (LecturerRegistry, *testRepos) {
	r := newTestRepos()
	return NewLecturerRegistry(r.repo, zap.NewNop()), r
}

func TestLecturerRegistry_ResolveLecturers_CreatesMissingInOneBatch(t *testing.T) {
	svc, r := setupTestLecturerRegistry()
	existingID := r.lecturers.seed("Nguyễn Văn A")

	ids, err := svc.ResolveLecturers(context.Background(),
		[]string{"Nguyễn Văn A", "Trần Thị B", " Trần Thị B ", "Lê C", "", "  "})
	if err != nil {
		t.Fatalf("ResolveLecturers 应成功: %v", err)
	}

	if len(ids) != 3 {
		t.Fatalf("期望解析 3 位教师，实际=%d (%v)", len(ids), ids)
	}
	if ids["Nguyễn Văn A"] != existingID {
		t.Errorf("已存在的教师应复用原 ID")
	}
	if r.lecturers.batchCalls != 1 {
		t.Errorf("缺失教师应一次批量创建，实际调用 %d 次", r.lecturers.batchCalls)
	}
	if r.lecturers.batchSizes[0] != 2 {
		t.Errorf("只应创建缺失的 2 位教师，实际=%d", r.lecturers.batchSizes[0])
	}
}

func TestLecturerRegistry_ResolveLecturers_AllKnown(t *testing.T) {
	svc, r := setupTestLecturerRegistry()
	r.lecturers.seed("A")
	r.lecturers.seed("B")

	ids, err := svc.ResolveLecturers(context.Background(), []string{"A", "B", "A"})
	if err != nil {
		t.Fatalf("ResolveLecturers 应成功: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("期望 2 位教师，实际=%d", len(ids))
	}
	if r.lecturers.batchCalls != 0 {
		t.Error("全部已存在时不应创建")
	}
	if r.lecturers.listCalls != 1 {
		t.Errorf("全部已存在时只需一次查询，实际=%d", r.lecturers.listCalls)
	}
}

func TestLecturerRegistry_ResolveLecturers_Empty(t *testing.T) {
	svc, r := setupTestLecturerRegistry()

	ids, err := svc.ResolveLecturers(context.Background(), []string{"", " "})
	if err != nil {
		t.Fatalf("空输入不应报错: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("期望空映射，实际=%v", ids)
	}
	if r.lecturers.listCalls != 0 {
		t.Error("空输入不应访问存储")
	}
}

func TestLecturerRegistry_ResolveLecturers_ConcurrentCreate(t *testing.T) {
	svc, r := setupTestLecturerRegistry()
	// X 在本次查询之后、INSERT 之前由其他写入方提交
	r.lecturers.racedNames = []string{"X"}

	ids, err := svc.ResolveLecturers(context.Background(), []string{"X", "Y"})
	if err != nil {
		t.Fatalf("其他写入方已创建的教师应被跳过并回读: %v", err)
	}
	if ids["X"] == "" || ids["Y"] == "" {
		t.Fatalf("回读后应解析全部教师，实际=%v", ids)
	}
	if ids["X"] != r.lecturers.lecturers["X"].LecturerID {
		t.Errorf("X 应解析为其他写入方创建的记录")
	}
	if len(r.lecturers.lecturers) != 2 {
		t.Errorf("不应产生重复教师，实际=%d", len(r.lecturers.lecturers))
	}
}

func TestLecturerRegistry_ResolveLecturers_AllRaced(t *testing.T) {
	svc, r := setupTestLecturerRegistry()
	r.lecturers.racedNames = []string{"X", "Y"}

	ids, err := svc.ResolveLecturers(context.Background(), []string{"X", "Y"})
	if err != nil {
		t.Fatalf("全部被抢先创建时也应成功: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("期望解析 2 位教师，实际=%v", ids)
	}
}

func TestLecturerRegistry_ResolveLecturers_UnresolvedIsFatal(t *testing.T) {
	svc, r := setupTestLecturerRegistry()
	r.lecturers.dropOnBatch = true

	ids, err := svc.ResolveLecturers(context.Background(), []string{"Ghost"})
	if !errors.Is(err, ErrLecturerUnresolved) {
		t.Errorf("期望 ErrLecturerUnresolved，实际: %v", err)
	}
	if ids != nil {
		t.Error("致命错误时不应返回部分映射")
	}
}

func TestLecturerRegistry_ResolveLecturers_StoreError(t *testing.T) {
	svc, r := setupTestLecturerRegistry()
	r.lecturers.batchErr = errors.New("connection reset")

	if _, err := svc.ResolveLecturers(context.Background(), []string{"Z"}); err == nil {
		t.Fatal("批量创建失败应返回错误")
	}
}
