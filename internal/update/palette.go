package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/commands"
)

func (m Model) openPalette(prefill string) Model {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, commands.AppHandlers(m.ctx, m.app))
	m.refresh()
	switch {
	case err != nil && res.Message == "":
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	case err != nil:
		m = m.done(res.Message, err)
	default:
		m.Status = StatusBar{Text: res.Message}
		m.notify("Command", res.Message, "info")
	}
	if res.Show != nil {
		m = m.applyShow(*res.Show)
	}
	return m
}

func (m Model) applyShow(s commands.ShowArgs) Model {
	switch s.Subject {
	case "tasks":
		m.CurrentView = ViewTasks
	case "archive":
		m.CurrentView = ViewArchive
	case "history":
		m.CurrentView = ViewHistory
		m.History = HistoryRange{From: s.From, To: s.To}
	case "shop":
		m.CurrentView = ViewShop
	case "stats":
		m.CurrentView = ViewStats
	}
	return m
}
