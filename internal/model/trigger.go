package model

import "time"

// TriggerEntry identifies one workflow run. The ID is the correlation id
// every step record is stored under.
type TriggerEntry struct {
	ID               string         `json:"id" db:"id"`
	TenantNamespace  string         `json:"tenant_namespace" db:"tenant_namespace"`
	OrganizationName string         `json:"organization_name" db:"organization_name"`
	Email            string         `json:"email" db:"email"`
	Country          string         `json:"country,omitempty" db:"country"`
	Tool             SelectedTool   `json:"tool" db:"tool"`
	Action           WorkflowAction `json:"action" db:"action"`
	Status           string         `json:"status" db:"status"`
	Remark           *string        `json:"remark,omitempty" db:"remark"`
	InputContext     TenantContext  `json:"-" db:"input_context"`
	OutputContext    TenantContext  `json:"-" db:"output_context"`
	CallbackURL      string         `json:"callback_url,omitempty" db:"callback_url"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`

	Steps []TriggerStepRecord `json:"steps,omitempty" db:"-"`
}

// Tenant returns the organization the entry was created for.
func (e *TriggerEntry) Tenant() Tenant {
	return Tenant{OrganizationName: e.OrganizationName, Email: e.Email, Country: e.Country}
}

// Step outcome constants.
const (
	StepSuccess = "SUCCESS"
	StepFailed  = "FAILED"
)

// TriggerStepRecord is the durable outcome of one step attempt. It is
// write-once: the tracker persists it and nothing mutates it afterwards.
type TriggerStepRecord struct {
	ID        string    `json:"id" db:"id"`
	TriggerID string    `json:"trigger_id" db:"trigger_id"`
	Step      string    `json:"step" db:"step"`
	Attempt   int       `json:"attempt" db:"attempt"`
	Status    string    `json:"status" db:"status"`
	Remark    string    `json:"remark,omitempty" db:"remark"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
