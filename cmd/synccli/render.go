package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/pkg/database"
)

func statusColor(status string) *color.Color {
	switch status {
	case model.SyncStatusSucceeded:
		return color.New(color.FgGreen, color.Bold)
	case model.SyncStatusPartial:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// renderImport 输出一次导入的结果
func renderImport(w io.Writer, resp *dto.ImportSnapshotResponse) {
	statusColor(resp.Status).Fprintf(w, "Sync %s", resp.Status)
	fmt.Fprintf(w, "  run=%s  duration=%s\n\n", resp.SyncRunID, resp.Duration)

	color.New(color.FgCyan).Fprintln(w, "Reference data")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Kind", "Created", "Already exists", "Failed"})
	for _, r := range []*dto.ImportReport{resp.Terms, resp.Years, resp.Weeks, resp.Subjects} {
		if r == nil {
			continue
		}
		table.Append([]string{r.Kind, strconv.Itoa(r.Created), strconv.Itoa(r.AlreadyExists), strconv.Itoa(r.Failed)})
	}
	table.Render()

	rep := resp.Classes
	if rep == nil {
		return
	}

	color.New(color.FgCyan).Fprintf(w, "\nClasses %s / %s\n", rep.Year, rep.Term)
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Received", "Created", "Updated", "Unchanged", "Unresolved", "Invalid", "Duplicates"})
	table.Append([]string{
		strconv.Itoa(rep.Received),
		strconv.Itoa(rep.Created),
		strconv.Itoa(rep.Updated),
		strconv.Itoa(rep.Unchanged),
		strconv.Itoa(rep.SkippedUnresolved),
		strconv.Itoa(rep.SkippedInvalid),
		strconv.Itoa(rep.DuplicateKeys),
	})
	table.Render()

	for name, b := range map[string]dto.BatchResult{"create": rep.CreateBatch, "update": rep.UpdateBatch} {
		if b.Failed {
			color.New(color.FgRed).Fprintf(w, "%s batch failed (%d rows): %s\n", name, b.Attempted, b.Error)
		}
	}

	if len(rep.Changes) > 0 {
		color.New(color.FgCyan).Fprintln(w, "\nLecturer changes")
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Class", "Old lecturer", "New lecturer"})
		for _, c := range rep.Changes {
			table.Append([]string{c.ExternalClassID, c.OldLecturer, c.NewLecturer})
		}
		table.Render()
	}

	if len(rep.Warnings) > 0 {
		color.New(color.FgYellow).Fprintln(w, "\nWarnings")
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Class", "Kind", "Detail"})
		for _, wn := range rep.Warnings {
			table.Append([]string{wn.ExternalClassID, wn.Kind, wn.Detail})
		}
		table.Render()
	}
}

// renderRuns 输出运行记录列表
func renderRuns(w io.Writer, runs []dto.SyncRunResponse, total int64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Year", "Term", "Status", "By", "Created", "Updated", "Unchanged", "Skipped"})
	for _, r := range runs {
		table.Append([]string{
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Year,
			r.Term,
			statusColor(r.Status).Sprint(r.Status),
			r.TriggeredBy,
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Unchanged),
			strconv.Itoa(r.SkippedUnresolved + r.SkippedInvalid),
		})
	}
	table.Render()
	fmt.Fprintf(w, "%d of %d runs\n", len(runs), total)
}

// renderMigrationState 输出迁移状态
func renderMigrationState(w io.Writer, state *database.MigrationState) {
	switch {
	case state.Dirty:
		color.New(color.FgRed, color.Bold).Fprintf(w, "schema version %d (dirty)\n", state.Version)
	case state.Pending > 0:
		color.New(color.FgYellow, color.Bold).Fprintf(w, "schema version %d, pending up to %d\n", state.Version, state.Pending)
	default:
		color.New(color.FgGreen, color.Bold).Fprintf(w, "schema version %d (up to date)\n", state.Version)
	}
}
