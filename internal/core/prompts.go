package core

import (
	"fmt"
	"strings"

	"hospital-assistant/pkg"
)

// prompts.go defines the assistant's prompts and canned replies.  Keeping
// them in a separate file makes them easy to tweak without touching the
// orchestration logic.

// SystemPrompt frames every model call.  It describes the assistant's role
// toward an admitted patient and when to reach for each tool.
const SystemPrompt = `You are a helpful hospital assistant for admitted patients. Your role is to:

1. Help patients with their immediate needs:
   - Comfort-related requests (blankets, pillows, room temperature)
   - Basic necessities (water, food, personal items)
   - Assistance with mobility or positioning
   - Pain management needs
   - Bathroom assistance

2. Understand and relay medical care needs:
   - Current discomfort or pain (scale 1-10)
   - Medication timing or questions
   - Changes in symptoms
   - Concerns about treatment

3. Communication guidelines:
   - Be warm and empathetic
   - Address the patient respectfully
   - Ask one question at a time
   - Confirm understanding of requests
   - Prioritize urgent needs
   - Maintain a calm, reassuring tone

4. Response protocol:
   - For medical assistance: Use request_nurse_assistance (urgent/emergency needs)
   - For routine care: Use schedule_appointment (doctor visits, procedures)
   - Always clarify the urgency level of requests

Keep responses focused on understanding and addressing the patient's immediate needs while ensuring their comfort and safety.`

// streamFocus is appended to the system prompt in streaming mode, where
// tool calling is disabled and the goal is a natural typed conversation.
const streamFocus = "\n\nIMPORTANT: Focus on having a natural conversation. Ask questions to understand the patient's concerns."

// Canned user-facing replies.  Every failure inside the core degrades to
// one of these; exceptions never reach the patient.
const (
	genericApology = "I apologize, but I encountered an error. Please try again or call for assistance using your bedside button."

	storeApology = "I apologize, but I encountered an error while creating your request. Please try again or call for assistance using your bedside button."

	cannotProcessApology = "I apologize, but I couldn't process that request. Is there something else I can help you with?"

	declineAck = "I understand. I won't submit the request. Is there something else you'd like me to help you with?"

	emptyStreamFallback = "I apologize, but I was unable to generate a response. Please try again."

	streamErrorToken = "An error occurred while processing your message."
)

// Stream sentinels framing every token sequence.
const (
	StreamStart = "[START]"
	StreamEnd   = "[END]"
)

// enhancedSystemPrompt appends the caller-supplied per-turn context so the
// model can decide whether an assistance request should be created.
func enhancedSystemPrompt(conv pkg.ConversationContext) string {
	room := conv.Room
	if room == "" {
		room = "Unknown"
	}
	department := conv.Department
	if department == "" {
		department = "General"
	}
	previous := conv.PreviousRequests
	if previous == "" {
		previous = "None"
	}
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nCurrent context:\n")
	fmt.Fprintf(&b, "- Patient Room: %s\n", room)
	fmt.Fprintf(&b, "- Department: %s\n", department)
	fmt.Fprintf(&b, "- Previous Requests: %s\n\n", previous)
	b.WriteString("Based on the conversation, determine if a nursing assistance request should be created.")
	return b.String()
}

// requestSummary renders the priority/department/description/room block
// shared by the confirmation prompt and the submission replies.
func requestSummary(priority pkg.Priority, department, description, room string) string {
	return fmt.Sprintf("Priority: %s\nDepartment: %s\nDescription: %s\nRoom: %s",
		priority, department, description, room)
}
