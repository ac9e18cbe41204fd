package tools

import "hospital-assistant/pkg"

// Property describes a single parameter of a tool.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ParameterSchema is the object schema for a tool's arguments.
type ParameterSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Definition declares a callable tool to the model.  The JSON shape matches
// the "function" object of the model backend's tool-calling protocol.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// Tool names known to the catalog.
const (
	NameScheduleAppointment     = "schedule_appointment"
	NameRequestNurseAssistance  = "request_nurse_assistance"
	NameCreateAssistanceRequest = "create_assistance_request"
)

// Catalog returns the immutable ordered set of tool definitions sent on
// every model call.  The slice is freshly allocated so callers cannot
// mutate the canonical catalog.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        NameScheduleAppointment,
			Description: "Schedule a medical appointment",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]Property{
					"symptoms": {Type: "string", Description: "Patient symptoms"},
					"severity": {
						Type:        "string",
						Description: "Severity",
						Enum:        []string{"low", "medium", "high"},
					},
					"preferredDate": {Type: "string", Description: "Preferred date"},
				},
				Required: []string{"symptoms", "severity"},
			},
		},
		{
			Name:        NameRequestNurseAssistance,
			Description: "Request nurse help",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]Property{
					"urgency": {
						Type:        "string",
						Description: "Urgency level",
						Enum:        []string{"routine", "urgent", "emergency"},
					},
					"reason": {Type: "string", Description: "Reason for help"},
				},
				Required: []string{"urgency", "reason"},
			},
		},
		{
			Name:        NameCreateAssistanceRequest,
			Description: "Create a nursing assistance request after confirming with the patient",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]Property{
					"priority": {
						Type:        "string",
						Description: "Priority level of the request",
						Enum:        []string{"low", "medium", "high"},
					},
					"description": {
						Type:        "string",
						Description: "Detailed description of the assistance needed",
					},
					"department": {
						Type:        "string",
						Description: "Department responsible for handling the request",
						Enum:        append([]string(nil), pkg.Departments...),
					},
					"requiresConfirmation": {
						Type:        "boolean",
						Description: "Whether to ask for patient confirmation before creating the request",
					},
				},
				Required: []string{"priority", "description", "department", "requiresConfirmation"},
			},
		},
	}
}
