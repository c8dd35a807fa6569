package ui_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/debprep/internal/tui/ui"
)

func TestDefaultKeyMap(t *testing.T) {
	t.Parallel()

	km := ui.DefaultKeyMap()

	assert.NotEmpty(t, km.Up.Keys())
	assert.NotEmpty(t, km.Down.Keys())
	assert.NotEmpty(t, km.Select.Keys())
	assert.NotEmpty(t, km.Quit.Keys())
	assert.Len(t, km.Pick.Keys(), 10)
	assert.Len(t, km.ShortHelp(), 6)
}

func TestKeyMap_Direction(t *testing.T) {
	t.Parallel()

	km := ui.DefaultKeyMap()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		up   bool
		down bool
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, true, false},
		{"vim k", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, true, false},
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, false, true},
		{"vim j", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, false, true},
		{"digit", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.up, km.IsUp(tt.msg))
			assert.Equal(t, tt.down, km.IsDown(tt.msg))
		})
	}
}
