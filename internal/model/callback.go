package model

// CallbackPayload is the JSON body POSTed to a trigger's callback URL when
// its workflow run completes.
type CallbackPayload struct {
	TriggerID       string         `json:"trigger_id"`
	TenantNamespace string         `json:"tenant_namespace"`
	Action          WorkflowAction `json:"action"`
	Status          string         `json:"status"`
	Remark          string         `json:"remark,omitempty"`
}
