package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPropose(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(&App{})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"propose"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestPropose(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit bool
		contains string
	}{
		{
			name:     "complete without cost",
			args:     []string{"--from", "In Service", "--to", "Completed"},
			wantExit: true,
			contains: "cost_required",
		},
		{
			name:     "complete with cost",
			args:     []string{"--from", "In Service", "--to", "Completed", "--cost", "500"},
			contains: `"toStatus": "Completed"`,
		},
		{
			name:     "leave completed unacknowledged",
			args:     []string{"--from", "Completed", "--to", "Delivered", "--cost", "500"},
			wantExit: true,
			contains: "confirmation required",
		},
		{
			name:     "leave completed acknowledged",
			args:     []string{"--from", "Completed", "--to", "Delivered", "--cost", "500", "--ack"},
			contains: `"costReset": true`,
		},
		{
			name:     "strict reason too short",
			args:     []string{"--from", "Received", "--to", "Cancelled", "--reason", "too short", "--min-reason", "10"},
			wantExit: true,
			contains: "reason_required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runPropose(t, tt.args...)
			if tt.wantExit {
				var exit *ExitError
				require.ErrorAs(t, err, &exit)
				assert.Equal(t, 1, exit.Code)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestPropose_OutputIsTransitionRequest(t *testing.T) {
	out, err := runPropose(t, "--from", "Received", "--to", "Cancelled", "--reason", " no parts ")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Received", got["fromStatus"])
	assert.Equal(t, " no parts ", got["cancellationReason"])
	assert.Equal(t, false, got["costReset"])
}

func TestPropose_UnknownStatus(t *testing.T) {
	_, err := runPropose(t, "--from", "Lost", "--to", "Received")
	require.Error(t, err)
	var exit *ExitError
	assert.NotErrorAs(t, err, &exit)
}
