package model

// Tenant is the organization being onboarded. Email doubles as the owner
// identity used for the storage principal.
type Tenant struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Country          string `json:"country,omitempty"`
}
