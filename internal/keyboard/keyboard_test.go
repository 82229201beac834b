package keyboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskKeyboard(t *testing.T) {
	id := uuid.New()
	markup := Task(id)

	complete := *markup.InlineKeyboard[0][0].CallbackData
	details := *markup.InlineKeyboard[1][0].CallbackData

	got, ok := ParseAssignmentCallback(complete, CallbackCompletePrefix)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	got, ok = ParseAssignmentCallback(details, CallbackTaskDetailPrefix)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	// callback data ограничены 64 байтами
	assert.LessOrEqual(t, len(complete), 64)
	assert.LessOrEqual(t, len(details), 64)
}

func TestParseAssignmentCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{name: "чужой префикс", data: "task_details_" + uuid.NewString(), ok: false},
		{name: "битый id", data: "complete_task_123", ok: false},
		{name: "пусто", data: "", ok: false},
		{name: "валидный", data: "complete_task_" + uuid.NewString(), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseAssignmentCallback(tt.data, CallbackCompletePrefix)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
