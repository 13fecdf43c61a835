package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
	pkgerrors "uni-portal/backend/pkg/errors"
)

// ── Mock LookupRepository ──

type mockLookupRepo struct {
	mu        sync.Mutex
	labels    map[model.LookupKind]map[string]bool
	createErr error
}

func newMockLookupRepo() *mockLookupRepo {
	return &mockLookupRepo{labels: map[model.LookupKind]map[string]bool{
		model.LookupTerm:         {},
		model.LookupAcademicYear: {},
	}}
}

func (m *mockLookupRepo) Exists(_ context.Context, kind model.LookupKind, label string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labels[kind][label], nil
}

func (m *mockLookupRepo) Create(_ context.Context, kind model.LookupKind, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.labels[kind][label] {
		return gorm.ErrDuplicatedKey
	}
	m.labels[kind][label] = true
	return nil
}

func (m *mockLookupRepo) List(_ context.Context, kind model.LookupKind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for l := range m.labels[kind] {
		out = append(out, l)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// ── Mock WeekRepository ──

type mockWeekRepo struct {
	mu    sync.Mutex
	weeks map[string]*model.Week
}

func newMockWeekRepo() *mockWeekRepo {
	return &mockWeekRepo{weeks: make(map[string]*model.Week)}
}

func weekMapKey(value int, term, year string) string {
	return fmt.Sprintf("%d|%s|%s", value, term, year)
}

func (m *mockWeekRepo) GetByKey(_ context.Context, weekValue int, termLabel, yearLabel string) (*model.Week, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.weeks[weekMapKey(weekValue, termLabel, yearLabel)]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeekRepo) Create(_ context.Context, week *model.Week) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := weekMapKey(week.WeekValue, week.TermLabel, week.YearLabel)
	if _, ok := m.weeks[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	week.WeekID = fmt.Sprintf("week-%d", len(m.weeks)+1)
	m.weeks[key] = week
	return nil
}

// ── Mock MajorRepository ──

type mockMajorRepo struct {
	mu     sync.Mutex
	majors map[string]*model.Major
}

func newMockMajorRepo() *mockMajorRepo {
	return &mockMajorRepo{majors: make(map[string]*model.Major)}
}

func (m *mockMajorRepo) GetByName(_ context.Context, name string) (*model.Major, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mj, ok := m.majors[name]; ok {
		return mj, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMajorRepo) Create(_ context.Context, major *model.Major) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.majors[major.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	major.MajorID = "major-" + major.Name
	m.majors[major.Name] = major
	return nil
}

func (m *mockMajorRepo) List(_ context.Context) ([]model.Major, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Major
	for _, mj := range m.majors {
		out = append(out, *mj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	mu       sync.Mutex
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subjects[subject.SubjectID]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

// ── Mock LecturerRepository ──

type mockLecturerRepo struct {
	mu        sync.Mutex
	lecturers map[string]*model.Lecturer // name → lecturer
	seq       int

	listCalls  int
	batchCalls int
	batchSizes []int

	batchErr    error    // 非 nil 时批量创建直接失败
	racedNames  []string // 其他写入方在本次 INSERT 之前抢先提交的姓名
	dropOnBatch bool     // 批量创建"成功"但未落库
}

func newMockLecturerRepo() *mockLecturerRepo {
	return &mockLecturerRepo{lecturers: make(map[string]*model.Lecturer)}
}

// seed 直接写入教师，返回其 ID
func (m *mockLecturerRepo) seed(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(name)
}

func (m *mockLecturerRepo) insertLocked(name string) string {
	m.seq++
	l := &model.Lecturer{LecturerID: fmt.Sprintf("lect-%d", m.seq), Name: name}
	m.lecturers[name] = l
	return l.LecturerID
}

func (m *mockLecturerRepo) byID(id string) *model.Lecturer {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lecturers {
		if l.LecturerID == id {
			cp := *l
			return &cp
		}
	}
	return nil
}

func (m *mockLecturerRepo) ListByNames(_ context.Context, names []string) ([]model.Lecturer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var out []model.Lecturer
	for _, n := range names {
		if l, ok := m.lecturers[n]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

// BatchCreate 与 INSERT ... ON CONFLICT (name) DO NOTHING 语义一致：已存在的姓名跳过
func (m *mockLecturerRepo) BatchCreate(_ context.Context, lecturers []model.Lecturer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(lecturers))
	for _, name := range m.racedNames {
		if _, ok := m.lecturers[name]; !ok {
			m.insertLocked(name)
		}
	}
	if m.batchErr != nil {
		return 0, m.batchErr
	}
	if m.dropOnBatch {
		return 0, nil
	}
	var inserted int64
	for _, l := range lecturers {
		if _, ok := m.lecturers[l.Name]; ok {
			continue
		}
		m.insertLocked(l.Name)
		inserted++
	}
	return inserted, nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	mu        sync.Mutex
	classes   map[string]*model.Class // class_id → class
	changes   []model.ClassLecturerChange
	seq       int
	lecturers *mockLecturerRepo
	subjects  *mockSubjectRepo

	createCalls   int
	reassignCalls int
	createErr     error
	// beforeReassign 在改派事务开始前调用，用于模拟并发修改
	beforeReassign func()
}

func newMockClassRepo(lecturers *mockLecturerRepo, subjects *mockSubjectRepo) *mockClassRepo {
	return &mockClassRepo{
		classes:   make(map[string]*model.Class),
		lecturers: lecturers,
		subjects:  subjects,
	}
}

// seed 直接写入班级，返回其 class_id
func (m *mockClassRepo) seed(externalID, term, year, lecturerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("class-%d", m.seq)
	m.classes[id] = &model.Class{
		ClassID:          id,
		ExternalClassID:  externalID,
		SubjectID:        "SUB",
		TermLabel:        term,
		YearLabel:        year,
		LecturerID:       lecturerID,
		LearningSections: []byte("[]"),
	}
	return id
}

// setLecturer 绕过业务层直接改写班级教师
func (m *mockClassRepo) setLecturer(classID, lecturerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[classID].LecturerID = lecturerID
}

// find 按自然键查找班级副本
func (m *mockClassRepo) find(externalID, term, year string) *model.Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.ExternalClassID == externalID && c.TermLabel == term && c.YearLabel == year {
			cp := *c
			return &cp
		}
	}
	return nil
}

func (m *mockClassRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.classes)
}

func (m *mockClassRepo) list(term, year string) []model.Class {
	m.mu.Lock()
	var out []model.Class
	for _, c := range m.classes {
		if c.TermLabel == term && c.YearLabel == year {
			out = append(out, *c)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalClassID < out[j].ExternalClassID })
	return out
}

func (m *mockClassRepo) ListByTermAndYear(_ context.Context, termLabel, yearLabel string) ([]model.Class, error) {
	out := m.list(termLabel, yearLabel)
	for i := range out {
		out[i].Lecturer = m.lecturers.byID(out[i].LecturerID)
	}
	return out, nil
}

func (m *mockClassRepo) ListWithDetails(ctx context.Context, termLabel, yearLabel string) ([]model.Class, error) {
	out, _ := m.ListByTermAndYear(ctx, termLabel, yearLabel)
	for i := range out {
		if s, err := m.subjects.GetByID(ctx, out[i].SubjectID); err == nil {
			out[i].Subject = s
		}
	}
	return out, nil
}

func (m *mockClassRepo) BatchCreate(_ context.Context, classes []model.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	// 单条 INSERT：任一冲突整批失败
	for _, c := range classes {
		for _, existing := range m.classes {
			if existing.ExternalClassID == c.ExternalClassID && existing.TermLabel == c.TermLabel && existing.YearLabel == c.YearLabel {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	for _, c := range classes {
		m.seq++
		c.ClassID = fmt.Sprintf("class-%d", m.seq)
		cp := c
		m.classes[c.ClassID] = &cp
	}
	return nil
}

func (m *mockClassRepo) ReassignLecturers(_ context.Context, changes []model.ClassLecturerChange) error {
	if m.beforeReassign != nil {
		m.beforeReassign()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reassignCalls++
	// 先整体校验再整体应用，模拟事务的全有或全无
	for _, c := range changes {
		cur, ok := m.classes[c.ClassID]
		if !ok || cur.LecturerID != c.OldLecturerID {
			return fmt.Errorf("改派班级 %s 教师失败: %w", c.ExternalClassID, pkgerrors.ErrOptimisticLock)
		}
	}
	for _, c := range changes {
		m.classes[c.ClassID].LecturerID = c.NewLecturerID
		c.ChangeID = fmt.Sprintf("chg-%d", len(m.changes)+1)
		c.CreatedAt = time.Now()
		m.changes = append(m.changes, c)
	}
	return nil
}

// ── Mock LecturerChangeRepository ──

type mockLecturerChangeRepo struct {
	classes *mockClassRepo
}

func (m *mockLecturerChangeRepo) ListByTermAndYear(_ context.Context, termLabel, yearLabel string, offset, limit int) ([]model.ClassLecturerChange, int64, error) {
	m.classes.mu.Lock()
	defer m.classes.mu.Unlock()
	var out []model.ClassLecturerChange
	for _, c := range m.classes.changes {
		if (termLabel == "" || c.TermLabel == termLabel) && (yearLabel == "" || c.YearLabel == yearLabel) {
			out = append(out, c)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ── Mock SyncRunRepository ──

type mockSyncRunRepo struct {
	mu   sync.Mutex
	runs []model.SyncRun
}

func newMockSyncRunRepo() *mockSyncRunRepo {
	return &mockSyncRunRepo{}
}

func (m *mockSyncRunRepo) Create(_ context.Context, run *model.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.SyncRunID = fmt.Sprintf("run-%d", len(m.runs)+1)
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockSyncRunRepo) List(_ context.Context, termLabel, yearLabel string, offset, limit int) ([]model.SyncRun, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SyncRun
	for _, r := range m.runs {
		if (termLabel == "" || r.TermLabel == termLabel) && (yearLabel == "" || r.YearLabel == yearLabel) {
			out = append(out, r)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ── 测试夹具 ──

type testRepos struct {
	repo      *repository.Repository
	lookups   *mockLookupRepo
	weeks     *mockWeekRepo
	majors    *mockMajorRepo
	subjects  *mockSubjectRepo
	lecturers *mockLecturerRepo
	classes   *mockClassRepo
	runs      *mockSyncRunRepo
}

func newTestRepos() *testRepos {
	lecturers := newMockLecturerRepo()
	subjects := newMockSubjectRepo()
	classes := newMockClassRepo(lecturers, subjects)
	r := &testRepos{
		lookups:   newMockLookupRepo(),
		weeks:     newMockWeekRepo(),
		majors:    newMockMajorRepo(),
		subjects:  subjects,
		lecturers: lecturers,
		classes:   classes,
		runs:      newMockSyncRunRepo(),
	}
	r.repo = &repository.Repository{
		Lookup:         r.lookups,
		Major:          r.majors,
		Week:           r.weeks,
		Subject:        r.subjects,
		Lecturer:       r.lecturers,
		Class:          r.classes,
		LecturerChange: &mockLecturerChangeRepo{classes: classes},
		SyncRun:        r.runs,
	}
	return r
}

func newTestSynchronizer(r *testRepos) ClassSynchronizer {
	logger := zap.NewNop()
	return NewClassSynchronizer(r.repo, NewLecturerRegistry(r.repo, logger), logger)
}
