package tools

import (
	"fmt"

	"hospital-assistant/pkg"
)

// UnknownToolError reports a model tool call naming a function that is not
// in the catalog.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ValidationError reports tool-call arguments that do not satisfy the
// declared parameter schema.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tool %s: argument %q %s", e.Tool, e.Field, e.Reason)
}

// Invocation is a validated, typed tool call.  Exactly one of the three
// concrete types below implements it; a switch over Invocation is
// exhaustive for the catalog.
type Invocation interface {
	ToolName() string
}

// ScheduleAppointment asks for a medical appointment.  Text-only
// acknowledgment; scheduling itself is not implemented here.
type ScheduleAppointment struct {
	Symptoms      string
	Severity      pkg.Severity
	PreferredDate string
}

func (ScheduleAppointment) ToolName() string { return NameScheduleAppointment }

// RequestNurseAssistance relays an immediate need to the nursing staff.
type RequestNurseAssistance struct {
	Urgency pkg.Urgency
	Reason  string
}

func (RequestNurseAssistance) ToolName() string { return NameRequestNurseAssistance }

// CreateAssistanceRequest creates a persisted assistance request, either
// immediately or after a confirmation round-trip with the patient.
type CreateAssistanceRequest struct {
	Priority             pkg.Priority
	Description          string
	Department           string
	RequiresConfirmation bool
}

func (CreateAssistanceRequest) ToolName() string { return NameCreateAssistanceRequest }

// ParseInvocation validates raw tool-call arguments against the catalog
// schema and returns the typed invocation.  It fails closed: a missing
// required field or an out-of-enum value yields a ValidationError rather
// than a partially populated invocation.
func ParseInvocation(name string, args map[string]any) (Invocation, error) {
	var def *Definition
	for _, d := range Catalog() {
		if d.Name == name {
			d := d
			def = &d
			break
		}
	}
	if def == nil {
		return nil, &UnknownToolError{Name: name}
	}
	if err := validate(def, args); err != nil {
		return nil, err
	}

	switch name {
	case NameScheduleAppointment:
		inv := ScheduleAppointment{
			Symptoms: args["symptoms"].(string),
			Severity: pkg.Severity(args["severity"].(string)),
		}
		if v, ok := args["preferredDate"].(string); ok {
			inv.PreferredDate = v
		}
		return inv, nil
	case NameRequestNurseAssistance:
		return RequestNurseAssistance{
			Urgency: pkg.Urgency(args["urgency"].(string)),
			Reason:  args["reason"].(string),
		}, nil
	case NameCreateAssistanceRequest:
		return CreateAssistanceRequest{
			Priority:             pkg.Priority(args["priority"].(string)),
			Description:          args["description"].(string),
			Department:           args["department"].(string),
			RequiresConfirmation: args["requiresConfirmation"].(bool),
		}, nil
	}
	return nil, &UnknownToolError{Name: name}
}

// validate checks required-field presence, declared types, and enum
// membership for every supplied argument.
func validate(def *Definition, args map[string]any) error {
	for _, field := range def.Parameters.Required {
		if _, ok := args[field]; !ok {
			return &ValidationError{Tool: def.Name, Field: field, Reason: "is required"}
		}
	}
	for field, raw := range args {
		prop, ok := def.Parameters.Properties[field]
		if !ok {
			// Extra arguments are ignored rather than rejected; models
			// occasionally volunteer fields the schema does not declare.
			continue
		}
		switch prop.Type {
		case "string":
			s, ok := raw.(string)
			if !ok {
				return &ValidationError{Tool: def.Name, Field: field, Reason: "must be a string"}
			}
			if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
				return &ValidationError{
					Tool:   def.Name,
					Field:  field,
					Reason: fmt.Sprintf("must be one of %v", prop.Enum),
				}
			}
		case "boolean":
			if _, ok := raw.(bool); !ok {
				return &ValidationError{Tool: def.Name, Field: field, Reason: "must be a boolean"}
			}
		}
	}
	return nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
