package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/streakd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

var paletteCommands = []string{
	"add <text> [d:easy|medium|hard] [at:HH:MM] [every:daily|weekly|monthly[:N]]",
	"done|archive|edit <n|id> [text]",
	"restore|delete <n|id>  (archive)",
	"buy <item>",
	"sync on|off   haptics on|off   lead <minutes>",
	"show tasks|archive|shop|stats   show history [from:DATE] [to:DATE]",
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	plain := []string{m.helpModel.View(helpKeyMap{short: bindings, full: [][]key.Binding{bindings}})}
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		Commands: paletteCommands,
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Tasks, Action: "tasks"},
		{Key: m.Keys.Archive, Action: "archive"},
		{Key: m.Keys.History, Action: "history"},
		{Key: m.Keys.Shop, Action: "shop"},
		{Key: m.Keys.Stats, Action: "stats"},
		{Key: "/", Action: "command"},
		{Key: m.Keys.Help, Action: "help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewTasks:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "complete / reopen"},
			{Key: "n", Action: "new task"},
			{Key: "e", Action: "edit text"},
			{Key: "a", Action: "archive"},
		}
	case ViewArchive:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "r", Action: "restore"},
			{Key: "x", Action: "delete forever"},
		}
	case ViewHistory:
		return []KeyBinding{{Key: "j/k", Action: "scroll"}}
	case ViewShop:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "buy / equip"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
