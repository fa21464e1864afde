package models

import "time"

// User roles
const (
	RoleAdmin   = "ADMINISTRADOR"
	RoleHandler = "LIQUIDADOR"
)

// StatusRegistered is the status written by claim registration
const StatusRegistered = "ALTA SINIESTRO"

// Text layouts of the ledger date columns
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Ledger row schema versions. Version 1 rows were imported from the
// spreadsheet era and may lack newer columns.
const (
	SchemaVersionLegacy  = 1
	SchemaVersionCurrent = 2
)

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterClaimRequest struct {
	ClaimNumber string `json:"claim_number"`
	ClaimDetails
	Comment string `json:"comment"`
}

type AppendStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type EditClaimRequest struct {
	ClaimDetails
	// nil keeps last-write-wins
	ExpectedRevision *int `json:"expected_revision,omitempty"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Session   Session   `json:"session"`
}

type CreateUserResponse struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	HandlerName string `json:"handler_name"`
	Notified    bool   `json:"notified"`
}

type ClaimEventResponse struct {
	Record      ClaimRecord  `json:"record"`
	Attachments []Attachment `json:"attachments"`
}

type ClaimResponse struct {
	ClaimNumber    string        `json:"claim_number"`
	LatestStatus   string        `json:"latest_status"`
	LatestStatusAt string        `json:"latest_status_at"`
	FolderLink     string        `json:"folder_link"`
	Revision       int           `json:"revision"`
	Details        ClaimDetails  `json:"details"`
	History        []ClaimRecord `json:"history"`
}

type EditClaimResponse struct {
	ClaimNumber string `json:"claim_number"`
	RowsUpdated int64  `json:"rows_updated"`
	Revision    int    `json:"revision"`
}

type DocumentsResponse struct {
	ClaimNumber string       `json:"claim_number"`
	FolderLink  string       `json:"folder_link"`
	Attachments []Attachment `json:"attachments"`
}

type SearchResponse struct {
	Count int           `json:"count"`
	Rows  []ClaimRecord `json:"rows"`
}

type Bucket struct {
	Label string `json:"label"`
	Total int    `json:"total"`
}

type DashboardSummary struct {
	TotalClaims     int       `json:"total_claims"`
	ClosedClaims    int       `json:"closed_claims"`
	ClosedPercent   int       `json:"closed_percent"`
	AvgBusinessDays float64   `json:"avg_business_days"`
	ByStatus        []Bucket  `json:"by_status"`
	ByHandler       []Bucket  `json:"by_handler"`
	GeneratedAt     time.Time `json:"generated_at"`
	Cached          bool      `json:"cached"`
}

type HandlerDashboard struct {
	HandlerName string        `json:"handler_name"`
	Total       int           `json:"total"`
	ByStatus    []Bucket      `json:"by_status"`
	Rows        []ClaimRecord `json:"rows"`
}

// Domain types

// Session is the identity carried by a verified session token
type Session struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	HandlerName string    `json:"handler_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type User struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	HandlerName string    `json:"handler_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Party struct {
	Name       string `json:"name"`
	TaxID      string `json:"tax_id"`
	PersonType string `json:"person_type"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
}

type Vehicle struct {
	Make         string `json:"make"`
	Submodel     string `json:"submodel"`
	Version      string `json:"version"`
	ModelYear    string `json:"model_year"`
	SerialNumber string `json:"serial_number"`
	EngineNumber string `json:"engine_number"`
	Plate        string `json:"plate"`
}

// ClaimDetails is the descriptive field set owned by the claim as a whole.
// It is copied into every ledger row and edited on all of them at once.
type ClaimDetails struct {
	Correlative       string  `json:"correlative"`
	IncidentDate      string  `json:"incident_date"`
	IncidentPlace     string  `json:"incident_place"`
	AssignmentChannel string  `json:"assignment_channel"`
	Coverage          string  `json:"coverage"`
	Insured           Party   `json:"insured"`
	Owner             Party   `json:"owner"`
	Vehicle           Vehicle `json:"vehicle"`
}

// ClaimRecord is one ledger row: a registration or a status transition.
// Empty strings mean the column is absent.
type ClaimRecord struct {
	ID          string `json:"id"`
	ClaimNumber string `json:"claim_number"`
	ClaimDetails
	CreatedOn     string `json:"created_on"`
	StatusAt      string `json:"status_at"`
	Status        string `json:"status"`
	Comment       string `json:"comment"`
	HandlerName   string `json:"handler_name"`
	HandlerLogin  string `json:"handler_login"`
	FolderLink    string `json:"folder_link"`
	SchemaVersion int    `json:"schema_version"`
}

// TextValues returns every textual column of the row, used for free-text search
func (r ClaimRecord) TextValues() []string {
	d := r.ClaimDetails
	return []string{
		r.ClaimNumber, d.Correlative, d.IncidentDate, d.IncidentPlace, d.AssignmentChannel, d.Coverage,
		d.Vehicle.Make, d.Vehicle.Submodel, d.Vehicle.Version, d.Vehicle.ModelYear,
		d.Vehicle.SerialNumber, d.Vehicle.EngineNumber, d.Vehicle.Plate,
		r.CreatedOn, r.StatusAt, r.Status,
		d.Insured.Name, d.Insured.TaxID, d.Insured.PersonType, d.Insured.Phone, d.Insured.Email, d.Insured.Address,
		d.Owner.Name, d.Owner.TaxID, d.Owner.PersonType, d.Owner.Phone, d.Owner.Email, d.Owner.Address,
		r.HandlerName, r.HandlerLogin, r.FolderLink, r.Comment,
	}
}

type Attachment struct {
	ID          string    `json:"id"`
	ClaimNumber string    `json:"claim_number"`
	ObjectKey   string    `json:"object_key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Size        string    `json:"size,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	URL         string    `json:"url,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
