package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

// Tracker persists trigger step records and the status of trigger entries.
type Tracker struct {
	db DB
}

// NewTracker creates a Tracker activity struct.
func NewTracker(db DB) *Tracker {
	return &Tracker{db: db}
}

// RecordTriggerStep appends one step record. Records are write-once: a
// replayed insert of the same id is ignored, so the activity can be
// retried without duplicating the log.
func (a *Tracker) RecordTriggerStep(ctx context.Context, rec model.TriggerStepRecord) error {
	if rec.ID == "" || rec.TriggerID == "" || rec.Step == "" {
		return retry.Precondition("step record needs id, trigger id and step", nil)
	}
	if rec.Status != model.StepSuccess && rec.Status != model.StepFailed {
		return retry.Precondition(fmt.Sprintf("invalid step status %q", rec.Status), nil)
	}

	tag, err := a.db.Exec(ctx,
		`INSERT INTO autosetup_trigger_details (id, trigger_id, step, attempt, status, remark, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.TriggerID, rec.Step, rec.Attempt, rec.Status, rec.Remark, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("record trigger step %s: %w", rec.Step, err)
	}
	if tag.RowsAffected() == 1 {
		stepRecordsTotal.WithLabelValues(rec.Step, rec.Status).Inc()
	}
	return nil
}

// UpdateTriggerEntryParams carries the state of a run to persist.
type UpdateTriggerEntryParams struct {
	ID            string
	Status        string
	Remark        *string
	OutputContext model.TenantContext
}

// UpdateTriggerEntry sets the status, remark and output context of a run.
// A nil output context leaves the stored one untouched.
func (a *Tracker) UpdateTriggerEntry(ctx context.Context, params UpdateTriggerEntryParams) error {
	tag, err := a.db.Exec(ctx,
		`UPDATE autosetup_trigger_entries
		 SET status = $1, remark = $2, output_context = COALESCE($3, output_context), updated_at = now()
		 WHERE id = $4`,
		params.Status, params.Remark, params.OutputContext, params.ID,
	)
	if err != nil {
		return fmt.Errorf("update trigger entry %s: %w", params.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return retry.Precondition("trigger entry "+params.ID+" not found", errors.New("no rows updated"))
	}
	if params.Status == model.StatusSuccess || params.Status == model.StatusFailed {
		triggerEntriesFinished.WithLabelValues(params.Status).Inc()
	}
	return nil
}
