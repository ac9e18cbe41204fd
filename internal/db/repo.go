package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"hospital-assistant/pkg"
)

// Repository wraps database operations for assistance requests.
// A single postgres database backs this service.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// CreateAssistanceRequest inserts a new request.  Priority is normalized
// to uppercase and status defaults to PENDING at this boundary regardless
// of what the caller supplied.  The generated ID and creation time are
// written back into req.
func (r *Repository) CreateAssistanceRequest(ctx context.Context, req *pkg.AssistanceRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Priority = strings.ToUpper(req.Priority)
	if req.Status == "" {
		req.Status = pkg.StatusPending
	}
	var patient sql.NullString
	if req.Patient != "" {
		patient = sql.NullString{String: req.Patient, Valid: true}
	}
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO assistance_requests (id, priority, description, department, room, patient, status)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at`,
		req.ID, req.Priority, req.Description, req.Department, req.Room, patient, req.Status,
	).Scan(&req.CreatedAt)
}

// ListOpenRequests returns all requests still in PENDING status, newest
// first, for the nurse dashboard.
func (r *Repository) ListOpenRequests(ctx context.Context) ([]pkg.AssistanceRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, priority, description, department, room, patient, status, created_at
         FROM assistance_requests
         WHERE status = $1
         ORDER BY created_at DESC`, pkg.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// ListRequestsByPatient returns a patient's most recent requests, newest
// first, capped at limit.  Callers use it to build the previous-requests
// line of the conversation context.
func (r *Repository) ListRequestsByPatient(ctx context.Context, patientID string, limit int) ([]pkg.AssistanceRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, priority, description, department, room, patient, status, created_at
         FROM assistance_requests
         WHERE patient = $1
         ORDER BY created_at DESC
         LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows *sql.Rows) ([]pkg.AssistanceRequest, error) {
	var out []pkg.AssistanceRequest
	for rows.Next() {
		var req pkg.AssistanceRequest
		var patient sql.NullString
		if err := rows.Scan(&req.ID, &req.Priority, &req.Description, &req.Department,
			&req.Room, &patient, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		req.Patient = patient.String
		out = append(out, req)
	}
	return out, rows.Err()
}
