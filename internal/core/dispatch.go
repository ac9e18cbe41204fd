package core

import (
	"context"
	"fmt"
	"strings"

	"hospital-assistant/internal/tools"
	"hospital-assistant/pkg"
)

// FunctionCallResult is the dispatcher's output.  PendingRequest is set if
// and only if the invocation requires a confirmation the patient has not
// yet given.
type FunctionCallResult struct {
	Text           string
	PendingRequest *pkg.PendingRequest
}

// dispatch executes a validated tool invocation.  Only
// create_assistance_request touches the store; the other two tools are
// text-only acknowledgments.  Store failures degrade to a user-safe
// apology rather than an error.
func (a *Assistant) dispatch(ctx context.Context, inv tools.Invocation, conv pkg.ConversationContext) *FunctionCallResult {
	switch call := inv.(type) {
	case tools.ScheduleAppointment:
		return &FunctionCallResult{
			Text: fmt.Sprintf("✓ Appointment scheduled: %s (%s severity)", call.Symptoms, call.Severity),
		}

	case tools.RequestNurseAssistance:
		return &FunctionCallResult{
			Text: fmt.Sprintf("⚡ Nurse requested: %s (%s)", call.Reason, call.Urgency),
		}

	case tools.CreateAssistanceRequest:
		room := conv.Room
		if room == "" {
			room = "Unknown"
		}

		if call.RequiresConfirmation {
			// Two-phase path: hand the pending request back to the caller
			// and persist nothing until the patient says yes.
			pending := &pkg.PendingRequest{
				Priority:    call.Priority,
				Description: call.Description,
				Department:  call.Department,
				Room:        room,
				Patient:     conv.PatientID,
				Status:      pkg.StatusPending,
			}
			return &FunctionCallResult{
				Text: "I'll help you create a request for nursing assistance. Here's what I understand:\n\n" +
					requestSummary(call.Priority, call.Department, call.Description, room) +
					"\n\nWould you like me to submit this request? Please confirm with \"yes\" or \"no\".",
				PendingRequest: pending,
			}
		}

		record := &pkg.AssistanceRequest{
			Priority:    strings.ToUpper(string(call.Priority)),
			Description: call.Description,
			Department:  call.Department,
			Room:        room,
			Patient:     conv.PatientID,
			Status:      pkg.StatusPending,
		}
		if err := a.store.CreateAssistanceRequest(ctx, record); err != nil {
			a.log.Error().Err(err).Msg("failed to create assistance request")
			return &FunctionCallResult{Text: storeApology}
		}
		return &FunctionCallResult{
			Text: "I've created a request for nursing assistance:\n\n" +
				requestSummary(call.Priority, call.Department, call.Description, room) +
				"\n\nA nurse will be notified and will assist you soon.",
		}
	}

	// Unreachable for invocations produced by tools.ParseInvocation.
	return nil
}
