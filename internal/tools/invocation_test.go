package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-assistant/pkg"
)

func TestCatalogShape(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 3)

	assert.Equal(t, NameScheduleAppointment, catalog[0].Name)
	assert.Equal(t, []string{"symptoms", "severity"}, catalog[0].Parameters.Required)
	assert.Equal(t, []string{"low", "medium", "high"}, catalog[0].Parameters.Properties["severity"].Enum)

	assert.Equal(t, NameRequestNurseAssistance, catalog[1].Name)
	assert.Equal(t, []string{"routine", "urgent", "emergency"}, catalog[1].Parameters.Properties["urgency"].Enum)

	assert.Equal(t, NameCreateAssistanceRequest, catalog[2].Name)
	assert.Len(t, catalog[2].Parameters.Properties["department"].Enum, 13)
	assert.Contains(t, catalog[2].Parameters.Required, "requiresConfirmation")
}

func TestCatalogReturnsFreshSlices(t *testing.T) {
	first := Catalog()
	first[0].Name = "mutated"
	assert.Equal(t, NameScheduleAppointment, Catalog()[0].Name)
}

func TestParseInvocationCreateRequest(t *testing.T) {
	inv, err := ParseInvocation(NameCreateAssistanceRequest, map[string]any{
		"priority":             "high",
		"description":          "patient reports severe pain",
		"department":           "Emergency",
		"requiresConfirmation": true,
	})
	require.NoError(t, err)

	call, ok := inv.(CreateAssistanceRequest)
	require.True(t, ok)
	assert.Equal(t, pkg.PriorityHigh, call.Priority)
	assert.Equal(t, "patient reports severe pain", call.Description)
	assert.Equal(t, "Emergency", call.Department)
	assert.True(t, call.RequiresConfirmation)
}

func TestParseInvocationScheduleAppointment(t *testing.T) {
	inv, err := ParseInvocation(NameScheduleAppointment, map[string]any{
		"symptoms": "persistent cough",
		"severity": "medium",
	})
	require.NoError(t, err)

	call, ok := inv.(ScheduleAppointment)
	require.True(t, ok)
	assert.Equal(t, "persistent cough", call.Symptoms)
	assert.Equal(t, pkg.SeverityMedium, call.Severity)
	assert.Empty(t, call.PreferredDate)
}

func TestParseInvocationNurseAssistance(t *testing.T) {
	inv, err := ParseInvocation(NameRequestNurseAssistance, map[string]any{
		"urgency": "urgent",
		"reason":  "needs blanket",
	})
	require.NoError(t, err)

	call, ok := inv.(RequestNurseAssistance)
	require.True(t, ok)
	assert.Equal(t, pkg.UrgencyUrgent, call.Urgency)
	assert.Equal(t, "needs blanket", call.Reason)
}

func TestParseInvocationUnknownTool(t *testing.T) {
	_, err := ParseInvocation("order_pizza", map[string]any{})
	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "order_pizza", unknown.Name)
}

func TestParseInvocationValidation(t *testing.T) {
	cases := []struct {
		name string
		tool string
		args map[string]any
	}{
		{
			name: "missing required field",
			tool: NameRequestNurseAssistance,
			args: map[string]any{"urgency": "urgent"},
		},
		{
			name: "enum violation",
			tool: NameCreateAssistanceRequest,
			args: map[string]any{
				"priority":             "critical",
				"description":          "help",
				"department":           "Emergency",
				"requiresConfirmation": false,
			},
		},
		{
			name: "unknown department",
			tool: NameCreateAssistanceRequest,
			args: map[string]any{
				"priority":             "low",
				"description":          "help",
				"department":           "Astrology",
				"requiresConfirmation": false,
			},
		},
		{
			name: "wrong type for boolean",
			tool: NameCreateAssistanceRequest,
			args: map[string]any{
				"priority":             "low",
				"description":          "help",
				"department":           "Emergency",
				"requiresConfirmation": "yes",
			},
		},
		{
			name: "wrong type for string",
			tool: NameScheduleAppointment,
			args: map[string]any{"symptoms": 7, "severity": "low"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseInvocation(tc.tool, tc.args)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.tool, verr.Tool)
		})
	}
}

func TestParseInvocationIgnoresExtraArguments(t *testing.T) {
	_, err := ParseInvocation(NameRequestNurseAssistance, map[string]any{
		"urgency": "routine",
		"reason":  "water refill",
		"mood":    "calm",
	})
	assert.NoError(t, err)
}
