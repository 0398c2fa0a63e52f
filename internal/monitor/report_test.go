package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Add(t *testing.T) {
	r := &Report{}
	assert.True(t, r.Empty())

	r.Add("nexus", 5020, []string{"2025-01-01T10:00", "2025-01-01T10:10"})
	r.Add("global_entry", 5140, []string{"2025-02-01T08:00"})

	assert.False(t, r.Empty())
	assert.Equal(t, 2, r.Sections())
	assert.Equal(t, 3, r.SlotCount())
	assert.Equal(t, []string{
		"*** [NEXUS] Available slots at 5020:",
		"1. 2025-01-01T10:00",
		"2. 2025-01-01T10:10",
		"",
		"*** [GLOBAL_ENTRY] Available slots at 5140:",
		"1. 2025-02-01T08:00",
	}, r.Lines())
}

func TestReport_AddEmptySlotsIsNoop(t *testing.T) {
	r := &Report{}
	r.Add("nexus", 5020, nil)
	r.Add("nexus", 5021, []string{})

	assert.True(t, r.Empty())
	assert.Equal(t, "", r.Text())
	assert.Empty(t, r.Lines())
}

func TestReport_Text(t *testing.T) {
	r := &Report{}
	r.Add("nexus", 5020, []string{"2025-01-01T10:00"})

	assert.Equal(t, "*** [NEXUS] Available slots at 5020:\n1. 2025-01-01T10:00", r.Text())
}

func TestReport_LinesReturnsCopy(t *testing.T) {
	r := &Report{}
	r.Add("nexus", 5020, []string{"2025-01-01T10:00"})

	lines := r.Lines()
	lines[0] = "changed"

	assert.Equal(t, "*** [NEXUS] Available slots at 5020:", r.Lines()[0])
}
