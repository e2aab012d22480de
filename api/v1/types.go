// Package v1 contains the REST resources served under /api/v1 of the
// StackHawk platform.
package v1

// Application is a scanned web application owned by an organization.
type Application struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	CreatedAt      string `json:"created_at" yaml:"created_at"`
	UpdatedAt      string `json:"updated_at" yaml:"updated_at"`
}

// Scan is a single scan run of an application.
type Scan struct {
	ID            string  `json:"id" yaml:"id"`
	ApplicationID string  `json:"application_id" yaml:"application_id"`
	Status        string  `json:"status" yaml:"status"`
	CreatedAt     string  `json:"created_at" yaml:"created_at"`
	CompletedAt   *string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	FindingsCount *int    `json:"findings_count,omitempty" yaml:"findings_count,omitempty"`
}

type Team struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
}

type User struct {
	ID    string  `json:"id" yaml:"id"`
	Email string  `json:"email" yaml:"email"`
	Name  *string `json:"name,omitempty" yaml:"name,omitempty"`
}

// CreateTeamRequest is the body of POST /api/v1/orgs/{org}/teams.
type CreateTeamRequest struct {
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
}
