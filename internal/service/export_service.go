package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoClasses    = errors.New("该学年学期暂无班级")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 将某 (学年, 学期) 的班级列表导出为 Excel (.xlsx)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 单个 Sheet，每行一个班级，按 externalClassId 排序
type ExportService interface {
	// ExportClasses 导出班级列表为 Excel
	ExportClasses(ctx context.Context, year, term string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportClasses 导出班级列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：{学年} 第{学期}学期 班级列表
//   - 表头：班级编号 | 类型 | 课程编号 | 课程名称 | 教师 | 上课星期
//   - 上课星期由 learning_sections 中的 weekDay 汇总，无法解析时留空
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportClasses(ctx context.Context, year, term string) (*bytes.Buffer, string, error) {
	year = strings.TrimSpace(year)
	term = strings.TrimSpace(term)
	if year == "" {
		return nil, "", ErrSyncYearRequired
	}
	if term == "" {
		return nil, "", ErrSyncTermRequired
	}

	classes, err := s.repo.Class.ListWithDetails(ctx, term, year)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(classes) == 0 {
		return nil, "", ErrExportNoClasses
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "班级列表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headers := []string{"班级编号", "类型", "课程编号", "课程名称", "教师", "上课星期"}
	widths := []float64{14, 10, 14, 36, 24, 16}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 第%s学期 班级列表", year, term))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range classes {
		c := &classes[i]
		subjectName, lecturerName := "", "-"
		if c.Subject != nil {
			subjectName = c.Subject.Name
		}
		if c.Lecturer != nil {
			lecturerName = c.Lecturer.Name
		}
		values := []interface{}{c.ExternalClassID, c.Type, c.SubjectID, subjectName, lecturerName, weekDays(c)}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("班级列表_%s_%s.xlsx", year, term)
	s.logger.Info("导出班级列表成功", zap.String("year", year), zap.String("term", term), zap.Int("count", len(classes)))
	return buf, filename, nil
}

// ── 辅助函数 ──

// weekDays 汇总上课星期，如 "2,4"
func weekDays(c *model.Class) string {
	var sections []struct {
		WeekDay int `json:"weekDay"`
	}
	if err := json.Unmarshal(c.LearningSections, &sections); err != nil {
		return ""
	}
	seen := make(map[int]bool)
	var days []int
	for _, s := range sections {
		if s.WeekDay <= 0 || seen[s.WeekDay] {
			continue
		}
		seen[s.WeekDay] = true
		days = append(days, s.WeekDay)
	}
	sort.Ints(days)

	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ",")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
