package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/autosetup/internal/api/request"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/platform"
	"github.com/edvin/autosetup/internal/workflow"
)

// SetupRequest is a validated request to onboard a tenant.
type SetupRequest struct {
	Tenant      model.Tenant
	Tool        model.SelectedTool
	Properties  map[string]string
	CallbackURL string
}

// AutoSetupService persists trigger entries and starts orchestrator runs.
type AutoSetupService struct {
	db       DB
	tc       temporalclient.Client
	settings model.AutoSetupSettings
}

func NewAutoSetupService(db DB, tc temporalclient.Client, settings model.AutoSetupSettings) *AutoSetupService {
	return &AutoSetupService{db: db, tc: tc, settings: settings}
}

// Create registers a new tenant and starts its CREATE run.
func (s *AutoSetupService) Create(ctx context.Context, req SetupRequest) (*model.TriggerEntry, error) {
	entry := s.newEntry(model.ActionCreate, platform.TenantNamespace(req.Tenant.OrganizationName), req.Tenant, req.Tool, req.CallbackURL)
	entry.InputContext = model.TenantContext(req.Properties).Clone()

	if err := s.start(ctx, entry, req.Tenant); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update starts an UPDATE run for the tenant of an existing entry. The
// context of the earlier run is reused and overlaid with the new properties.
func (s *AutoSetupService) Update(ctx context.Context, id string, properties map[string]string, callbackURL string) (*model.TriggerEntry, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := s.newEntry(model.ActionUpdate, prev.TenantNamespace, prev.Tenant(), prev.Tool, callbackURL)
	entry.InputContext = priorContext(prev)
	entry.InputContext.Merge(properties)

	if err := s.start(ctx, entry, prev.Tenant()); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete starts a DELETE run for the tenant of an existing entry, using the
// context the earlier run produced to locate the resources.
func (s *AutoSetupService) Delete(ctx context.Context, id string, callbackURL string) (*model.TriggerEntry, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := s.newEntry(model.ActionDelete, prev.TenantNamespace, prev.Tenant(), prev.Tool, callbackURL)
	entry.InputContext = priorContext(prev)

	if err := s.start(ctx, entry, prev.Tenant()); err != nil {
		return nil, err
	}
	return entry, nil
}

// priorContext returns the context a new run of the same tenant starts
// from: the output of the earlier run, or its input when it produced none.
func priorContext(prev *model.TriggerEntry) model.TenantContext {
	if len(prev.OutputContext) > 0 {
		return prev.OutputContext.Clone()
	}
	return prev.InputContext.Clone()
}

func (s *AutoSetupService) newEntry(action model.WorkflowAction, namespace string, tenant model.Tenant, tool model.SelectedTool, callbackURL string) *model.TriggerEntry {
	now := time.Now()
	return &model.TriggerEntry{
		ID:               platform.NewID(),
		TenantNamespace:  namespace,
		OrganizationName: tenant.OrganizationName,
		Email:            tenant.Email,
		Country:          tenant.Country,
		Tool:             tool,
		Action:           action,
		Status:           model.StatusPending,
		CallbackURL:      callbackURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// start inserts the entry and starts its run. When the run cannot be
// started the entry is marked FAILED so it never stays PENDING.
func (s *AutoSetupService) start(ctx context.Context, entry *model.TriggerEntry, tenant model.Tenant) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO autosetup_trigger_entries
		 (id, tenant_namespace, organization_name, email, country, tool, action, status, input_context, output_context, callback_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID, entry.TenantNamespace, entry.OrganizationName, entry.Email, entry.Country, entry.Tool,
		entry.Action, entry.Status, entry.InputContext, model.TenantContext{}, entry.CallbackURL,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trigger entry: %w", err)
	}

	_, err = startRun(ctx, s.tc, workflow.AutoSetupParams{
		Trigger:  *entry,
		Tenant:   tenant,
		Tool:     entry.Tool,
		Action:   entry.Action,
		Context:  entry.InputContext,
		Settings: s.settings,
	})
	if err != nil {
		remark := err.Error()
		if _, uerr := s.db.Exec(ctx,
			`UPDATE autosetup_trigger_entries SET status = $1, remark = $2, updated_at = now() WHERE id = $3`,
			model.StatusFailed, remark, entry.ID,
		); uerr != nil {
			return fmt.Errorf("mark trigger entry %s failed: %w (start error: %v)", entry.ID, uerr, err)
		}
		entry.Status = model.StatusFailed
		entry.Remark = &remark
		return err
	}

	workflowsStarted.WithLabelValues(string(entry.Action)).Inc()
	return nil
}

const entryColumns = `id, tenant_namespace, organization_name, email, country, tool, action, status, remark, input_context, output_context, callback_url, created_at, updated_at`

func scanEntry(row pgx.Row, e *model.TriggerEntry) error {
	return row.Scan(&e.ID, &e.TenantNamespace, &e.OrganizationName, &e.Email, &e.Country, &e.Tool,
		&e.Action, &e.Status, &e.Remark, &e.InputContext, &e.OutputContext, &e.CallbackURL,
		&e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns a trigger entry with its step records in the order they
// were written.
func (s *AutoSetupService) GetByID(ctx context.Context, id string) (*model.TriggerEntry, error) {
	var e model.TriggerEntry
	err := scanEntry(s.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM autosetup_trigger_entries WHERE id = $1`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trigger entry %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get trigger entry %s: %w", id, err)
	}

	steps, err := s.listSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Steps = steps
	return &e, nil
}

func (s *AutoSetupService) listSteps(ctx context.Context, triggerID string) ([]model.TriggerStepRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, trigger_id, step, attempt, status, remark, created_at, updated_at
		 FROM autosetup_trigger_details WHERE trigger_id = $1
		 ORDER BY created_at, attempt`, triggerID)
	if err != nil {
		return nil, fmt.Errorf("list step records for %s: %w", triggerID, err)
	}
	defer rows.Close()

	var steps []model.TriggerStepRecord
	for rows.Next() {
		var r model.TriggerStepRecord
		if err := rows.Scan(&r.ID, &r.TriggerID, &r.Step, &r.Attempt, &r.Status, &r.Remark, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan step record: %w", err)
		}
		steps = append(steps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate step records: %w", err)
	}
	return steps, nil
}

// List returns trigger entries without their step records. Search matches
// the tenant namespace or organization name.
func (s *AutoSetupService) List(ctx context.Context, params request.ListParams) ([]model.TriggerEntry, bool, error) {
	query := `SELECT ` + entryColumns + ` FROM autosetup_trigger_entries WHERE true`
	var args []any
	argIdx := 1

	if params.Search != "" {
		query += fmt.Sprintf(` AND (tenant_namespace ILIKE $%d OR organization_name ILIKE $%d)`, argIdx, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}

	sortCol := "created_at"
	switch params.Sort {
	case "tenant_namespace":
		sortCol = "tenant_namespace"
	case "status":
		sortCol = "status"
	case "action":
		sortCol = "action"
	}
	order := "DESC"
	if params.Order == "asc" {
		order = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id`, sortCol, order)
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list trigger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TriggerEntry
	for rows.Next() {
		var e model.TriggerEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, false, fmt.Errorf("scan trigger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate trigger entries: %w", err)
	}

	hasMore := len(entries) > params.Limit
	if hasMore {
		entries = entries[:params.Limit]
	}
	return entries, hasMore, nil
}
