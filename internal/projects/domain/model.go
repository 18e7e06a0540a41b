package domain

import "time"

// Project is the backend's top-level resource. Owned assets and processes are
// referenced by id only; they are fetched through their own endpoints.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AssetIDs    []string  `json:"asset_ids,omitempty"`
	ProcessIDs  []string  `json:"process_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProjectRequest is sent as-is to POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Asset is the metadata of a file owned by exactly one project.
// The binary content is never carried here.
type Asset struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Process status values
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Process is a unit of backend work (preprocessing of an uploaded asset)
// belonging to exactly one project.
type Process struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	AssetID   string    `json:"asset_id,omitempty"`
	Status    string    `json:"status"`
	Result    string    `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page selects one page of a list endpoint. The zero value means
// "backend default".
type Page struct {
	Page     int
	PageSize int
}

// Valid reports whether both values are positive and therefore sent.
func (p Page) Valid() bool {
	return p.Page > 0 && p.PageSize > 0
}

// Partial reports whether exactly one of the two values was supplied.
func (p Page) Partial() bool {
	return (p.Page > 0) != (p.PageSize > 0)
}
