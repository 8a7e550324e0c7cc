package model

import (
	"errors"
	"fmt"
)

type Settings struct {
	HapticsEnabled              bool `json:"hapticsEnabled"`
	RemoteSyncEnabled           bool `json:"remoteSyncEnabled"`
	NotificationLeadTimeMinutes int  `json:"notificationLeadTimeMinutes"`
}

const DefaultNotificationLeadMinutes = 30

func DefaultSettings() Settings {
	return Settings{
		HapticsEnabled:              true,
		RemoteSyncEnabled:           false,
		NotificationLeadTimeMinutes: DefaultNotificationLeadMinutes,
	}
}

// Normalize fills zero or invalid fields with defaults.
func (s Settings) Normalize() Settings {
	if s.NotificationLeadTimeMinutes <= 0 {
		s.NotificationLeadTimeMinutes = DefaultNotificationLeadMinutes
	}
	return s
}

type ShopItemType string

const (
	ShopItemIcon    ShopItemType = "icon"
	ShopItemUtility ShopItemType = "utility"
)

func (t ShopItemType) IsValid() bool {
	switch t {
	case ShopItemIcon, ShopItemUtility:
		return true
	default:
		return false
	}
}

// UtilityStreakReset is the utility keyword of the streak reset item.
const UtilityStreakReset = "streak_reset"

type ShopItem struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Cost        int          `json:"cost" yaml:"cost"`
	Type        ShopItemType `json:"type" yaml:"type"`
	Value       string       `json:"value" yaml:"value"`
	Owned       bool         `json:"owned" yaml:"-"`
	Description string       `json:"description" yaml:"description"`
}

func (i ShopItem) Validate() error {
	if i.ID == "" {
		return errors.New("model: shop item id is required")
	}
	if i.Cost <= 0 {
		return fmt.Errorf("model: shop item %q cost must be positive", i.ID)
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("model: shop item %q has invalid type %q", i.ID, i.Type)
	}
	return nil
}

const DefaultProfileIcon = "🙂"

type Profile struct {
	Icon string `json:"icon"`
}

func DefaultProfile() Profile {
	return Profile{Icon: DefaultProfileIcon}
}

// State is the whole application state. Tasks, Archive and Ledger are the
// shared parts mirrored to the remote store; the rest always stays on the
// device.
type State struct {
	Tasks         []Task         `json:"tasks"`
	Archive       []ArchivedTask `json:"archive"`
	Ledger        Ledger         `json:"ledger"`
	LastCheckDate string         `json:"lastCheckDate"`
	Settings      Settings       `json:"settings"`
	ShopItems     []ShopItem     `json:"shopItems"`
	Profile       Profile        `json:"profile"`
}

func NewState() State {
	return State{
		Tasks:     []Task{},
		Archive:   []ArchivedTask{},
		Settings:  DefaultSettings(),
		ShopItems: []ShopItem{},
		Profile:   DefaultProfile(),
	}
}

func (s State) Clone() State {
	out := s
	out.Tasks = append([]Task{}, s.Tasks...)
	out.Archive = append([]ArchivedTask{}, s.Archive...)
	out.Ledger = s.Ledger.Clone()
	out.ShopItems = append([]ShopItem{}, s.ShopItems...)
	return out
}

func (s State) FindTask(id string) (int, bool) {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s State) FindArchived(id string) (int, bool) {
	for i := range s.Archive {
		if s.Archive[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// HasID reports whether id is taken by an active or archived task.
func (s State) HasID(id string) bool {
	if _, ok := s.FindTask(id); ok {
		return true
	}
	_, ok := s.FindArchived(id)
	return ok
}

func (s State) Level() int {
	return s.Ledger.Level()
}
