package request

// SelectedTool names the package and portal offer flavour of a run.
type SelectedTool struct {
	Tool  string `json:"tool" validate:"required"`
	Label string `json:"label" validate:"required,slug"`
	Type  string `json:"type" validate:"required,oneof=app service other"`
}

// CreateAutoSetup onboards a new tenant.
type CreateAutoSetup struct {
	OrganizationName string            `json:"organization_name" validate:"required,max=255"`
	Email            string            `json:"email" validate:"required,email"`
	Country          string            `json:"country" validate:"omitempty,len=2"`
	Tool             SelectedTool      `json:"tool"`
	Properties       map[string]string `json:"properties" validate:"required,dive,keys,required,endkeys"`
	CallbackURL      string            `json:"callback_url" validate:"omitempty,url"`
}

// UpdateAutoSetup overlays new properties on the context of an earlier run.
type UpdateAutoSetup struct {
	Properties  map[string]string `json:"properties" validate:"dive,keys,required,endkeys"`
	CallbackURL string            `json:"callback_url" validate:"omitempty,url"`
}
