package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Presentation(t *testing.T) {
	tests := []struct {
		status   Status
		category Category
		badge    string
		terminal bool
	}{
		{StatusDone, CategoryCompleted, BadgePrimary, true},
		{StatusConverting, CategoryProcessing, BadgeAccent, false},
		{StatusGenerating, CategoryProcessing, BadgeAccent, false},
		{StatusMerging, CategoryProcessing, BadgeAccent, false},
		{StatusError, CategoryFailed, BadgeDestructive, true},
		{Status("DONE "), CategoryCompleted, BadgePrimary, true},
		{Status("uploading"), CategoryUnknown, BadgeMuted, false},
		{Status(""), CategoryUnknown, BadgeMuted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.NotPanics(t, func() { tt.status.BadgeColor() })
			assert.Equal(t, tt.category, tt.status.Category())
			assert.Equal(t, tt.badge, tt.status.BadgeColor())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.category != CategoryUnknown, tt.status.IsKnown())
		})
	}
}

func TestStatus_IsDone(t *testing.T) {
	assert.True(t, StatusDone.IsDone())
	assert.False(t, StatusError.IsDone())
	assert.False(t, StatusMerging.IsDone())
	assert.False(t, Status("completed").IsDone())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "generating", StatusGenerating.String())
	assert.Equal(t, "weird", Status("weird").String())
}
