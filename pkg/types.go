package pkg

import "time"

// Priority of an assistance request as spoken in conversation.  Stored
// records carry the uppercased form; see AssistanceRequest.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Severity of symptoms when scheduling an appointment.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Urgency of a nurse-assistance call.
type Urgency string

const (
	UrgencyRoutine   Urgency = "routine"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// Departments is the closed set of hospital departments a request can be
// routed to.  Any value outside this list is a contract violation by the
// caller or the model, not a recoverable runtime state.
var Departments = []string{
	"Emergency",
	"Intensive Care",
	"Pediatrics",
	"Maternity",
	"Oncology",
	"Cardiology",
	"Neurology",
	"Orthopedics",
	"Psychiatry",
	"Rehabilitation",
	"Geriatrics",
	"Surgery",
	"Outpatient",
}

// StatusPending is the initial status of every assistance request.
const StatusPending = "PENDING"

// PendingRequest is an assistance request awaiting the patient's explicit
// confirmation.  It lives for exactly one turn: the core returns it to the
// caller, and the caller passes it back in the next turn's
// ConversationContext.  No server-side session store holds it.
type PendingRequest struct {
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
	Room        string   `json:"room"`
	Patient     string   `json:"patient,omitempty"`
	Status      string   `json:"status"`
}

// ConversationContext is the ambient per-turn context supplied by the
// caller.  The core never persists it; the caller is the source of truth
// for continuity across turns.
type ConversationContext struct {
	Room             string          `json:"room,omitempty"`
	Department       string          `json:"department,omitempty"`
	PreviousRequests string          `json:"previousRequests,omitempty"`
	PendingRequest   *PendingRequest `json:"pendingRequest,omitempty"`
	PatientID        string          `json:"patientId,omitempty"`
}

// Reply is the outcome of one conversation turn.  PendingRequest is set
// when the assistant needs a yes/no confirmation before submitting a
// request; the caller must carry it into the next turn.
type Reply struct {
	Text           string          `json:"text"`
	PendingRequest *PendingRequest `json:"pendingRequest,omitempty"`
}

// AssistanceRequest is a persisted request for nursing assistance.
// Priority is normalized to uppercase at the storage boundary regardless
// of the case used in conversation; Status starts at PENDING.
type AssistanceRequest struct {
	ID          string    `json:"id"`
	Priority    string    `json:"priority"`
	Description string    `json:"description"`
	Department  string    `json:"department"`
	Room        string    `json:"room"`
	Patient     string    `json:"patient,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
