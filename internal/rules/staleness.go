package rules

import (
	"sort"
	"time"

	"github.com/starford/raido/internal/models"
)

const day = 24 * time.Hour

// Staleness windows in days.
const (
	MustStaleDays   = 7
	ShouldStaleDays = 21
)

// StaleThreshold returns the number of idle days after which a task of priority p is stale.
func StaleThreshold(p models.Priority) int {
	if p == models.PriorityMust {
		return MustStaleDays
	}
	return ShouldStaleDays
}

// StaleDays is the number of whole days elapsed between lastUpdated and now, floored.
func StaleDays(lastUpdated, now time.Time) int {
	elapsed := now.Sub(lastUpdated)
	days := elapsed / day
	if elapsed < 0 && elapsed%day != 0 {
		days--
	}
	return int(days)
}

// IsStale reports whether a task last touched at lastUpdated has exceeded its window.
func IsStale(lastUpdated time.Time, p models.Priority, now time.Time) bool {
	return StaleDays(lastUpdated, now) >= StaleThreshold(p)
}

// DetectStale returns the stale, non-done tasks among tasks, most stale first.
func DetectStale(tasks []models.Task, now time.Time) []models.StaleTask {
	out := []models.StaleTask{}
	for _, t := range tasks {
		if t.Status == models.StatusDone || !IsStale(t.LastUpdatedAt, t.Priority, now) {
			continue
		}
		out = append(out, models.StaleTask{
			Task:          t,
			StaleDays:     StaleDays(t.LastUpdatedAt, now),
			ThresholdDays: StaleThreshold(t.Priority),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StaleDays != out[j].StaleDays {
			return out[i].StaleDays > out[j].StaleDays
		}
		return out[i].ID < out[j].ID
	})
	return out
}
