package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func typeInto(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestEnterEmitsNormalisedCommand(t *testing.T) {
	m := typeInto(New(80, 10), "  type   plant ")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, CommandMsg("type plant"), cmd())
	require.Empty(t, m.input.Value())
}

func TestEnterOnBlankDoesNothing(t *testing.T) {
	m := typeInto(New(80, 10), "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
}
