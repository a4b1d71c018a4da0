package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/raido/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mustStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)
}

// styleRows highlights rows whose priority column reads "must".
func styleRows(rows [][]string, priorityCol int) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(rows) && col == priorityCol && rows[row][col] == string(models.PriorityMust) {
			return mustStyle
		}
		return cellStyle
	}
}

func due(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func taskRow(t models.Task) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		string(t.TaskType),
		string(t.Priority),
		string(t.Status),
		due(t.DueDate),
	}
}

func renderEmpty(w io.Writer, what string) error {
	_, err := fmt.Fprintln(w, mutedStyle.Render("no "+what))
	return err
}

func renderTasks(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		return renderEmpty(w, "tasks")
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow(t))
	}
	tbl := newTable("ID", "TITLE", "TYPE", "PRIORITY", "STATUS", "DUE").
		Rows(rows...).
		StyleFunc(styleRows(rows, 3))
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func renderStale(w io.Writer, stale []models.StaleTask) error {
	if len(stale) == 0 {
		return renderEmpty(w, "stale tasks")
	}
	rows := make([][]string, 0, len(stale))
	for _, s := range stale {
		rows = append(rows, append(taskRow(s.Task),
			strconv.Itoa(s.StaleDays),
			strconv.Itoa(s.ThresholdDays),
		))
	}
	tbl := newTable("ID", "TITLE", "TYPE", "PRIORITY", "STATUS", "DUE", "STALE DAYS", "THRESHOLD").
		Rows(rows...).
		StyleFunc(styleRows(rows, 3))
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func renderCarryover(w io.Writer, cands []models.CarryoverCandidate) error {
	if len(cands) == 0 {
		return renderEmpty(w, "overdue tasks")
	}
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		rows = append(rows, append(taskRow(c.Task), strconv.Itoa(c.OverdueDays)))
	}
	tbl := newTable("ID", "TITLE", "TYPE", "PRIORITY", "STATUS", "DUE", "OVERDUE").
		Rows(rows...).
		StyleFunc(styleRows(rows, 3))
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
