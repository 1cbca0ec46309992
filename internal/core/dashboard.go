package core

import (
	"context"
	"fmt"
)

// DashboardStats holds aggregate counts over trigger entries and their
// step records.
type DashboardStats struct {
	Entries         int           `json:"entries"`
	Tenants         int           `json:"tenants"`
	InProgress      int           `json:"in_progress"`
	Failed          int           `json:"failed"`
	EntriesByStatus []StatusCount `json:"entries_by_status"`
	EntriesByAction []ActionCount `json:"entries_by_action"`
	FailedSteps     []StepCount   `json:"failed_steps"`
	AvgRunSeconds   *float64      `json:"avg_run_seconds"`
}

// StatusCount holds a count grouped by status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ActionCount holds a count grouped by workflow action.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// StepCount holds the number of failed attempts of one step.
type StepCount struct {
	Step  string `json:"step"`
	Count int    `json:"count"`
}

// DashboardService queries aggregate stats from the trigger tables.
type DashboardService struct {
	db DB
}

func NewDashboardService(db DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats returns aggregate counts. The scalar counts come from one query
// with CTEs; the grouped counts from one query each.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	const countsQuery = `
		WITH entry_count AS (
			SELECT count(*) AS c FROM autosetup_trigger_entries
		), tenant_count AS (
			SELECT count(DISTINCT tenant_namespace) AS c FROM autosetup_trigger_entries
		), in_progress AS (
			SELECT count(*) AS c FROM autosetup_trigger_entries WHERE status IN ('PENDING', 'IN_PROGRESS')
		), failed AS (
			SELECT count(*) AS c FROM autosetup_trigger_entries WHERE status = 'FAILED'
		)
		SELECT
			(SELECT c FROM entry_count),
			(SELECT c FROM tenant_count),
			(SELECT c FROM in_progress),
			(SELECT c FROM failed)`

	stats := &DashboardStats{}
	err := s.db.QueryRow(ctx, countsQuery).Scan(
		&stats.Entries,
		&stats.Tenants,
		&stats.InProgress,
		&stats.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	bsRows, err := s.db.Query(ctx,
		`SELECT status, count(*) FROM autosetup_trigger_entries GROUP BY status ORDER BY count(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("dashboard entries by status: %w", err)
	}
	defer bsRows.Close()

	for bsRows.Next() {
		var sc StatusCount
		if err := bsRows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.EntriesByStatus = append(stats.EntriesByStatus, sc)
	}
	if err := bsRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	baRows, err := s.db.Query(ctx,
		`SELECT action, count(*) FROM autosetup_trigger_entries GROUP BY action ORDER BY count(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("dashboard entries by action: %w", err)
	}
	defer baRows.Close()

	for baRows.Next() {
		var ac ActionCount
		if err := baRows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		stats.EntriesByAction = append(stats.EntriesByAction, ac)
	}
	if err := baRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action counts: %w", err)
	}

	fsRows, err := s.db.Query(ctx,
		`SELECT step, count(*) FROM autosetup_trigger_details
		 WHERE status = 'FAILED' GROUP BY step ORDER BY count(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("dashboard failed steps: %w", err)
	}
	defer fsRows.Close()

	for fsRows.Next() {
		var sc StepCount
		if err := fsRows.Scan(&sc.Step, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan step count: %w", err)
		}
		stats.FailedSteps = append(stats.FailedSteps, sc)
	}
	if err := fsRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate step counts: %w", err)
	}

	// Average run time of runs finished in the last 30 days.
	var avg *float64
	err = s.db.QueryRow(ctx,
		`SELECT EXTRACT(EPOCH FROM avg(updated_at - created_at))
		 FROM autosetup_trigger_entries
		 WHERE status IN ('SUCCESS', 'FAILED') AND updated_at > now() - interval '30 days'`).Scan(&avg)
	if err == nil {
		stats.AvgRunSeconds = avg
	}

	return stats, nil
}
