package shop

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/streakd/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Items []model.ShopItem `yaml:"items"`
}

// DefaultCatalog returns the built-in item list with nothing owned.
func DefaultCatalog() ([]model.ShopItem, error) {
	return ParseCatalog(catalogYAML)
}

func ParseCatalog(raw []byte) ([]model.ShopItem, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("shop: parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(file.Items))
	for _, item := range file.Items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("shop: %w", err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("shop: duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
	}
	return file.Items, nil
}

// MergeCatalog appends catalog items missing from current, keeping ownership of
// items the user already has.
func MergeCatalog(current, catalog []model.ShopItem) []model.ShopItem {
	out := append([]model.ShopItem{}, current...)
	have := make(map[string]bool, len(current))
	for _, item := range current {
		have[item.ID] = true
	}
	for _, item := range catalog {
		if !have[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

type Outcome string

const (
	OutcomePurchased   Outcome = "purchased"
	OutcomeReequipped  Outcome = "reequipped"
	OutcomeAlreadyUsed Outcome = "already_used"
)

type Receipt struct {
	ItemID  string
	Outcome Outcome
	Spent   int
	Balance int
}

var ErrUnknownUtility = errors.New("shop: unknown utility effect")

// Purchase applies itemID against the state. On any error the state is left
// untouched.
func Purchase(st *model.State, itemID string) (Receipt, error) {
	idx := -1
	for i := range st.ShopItems {
		if st.ShopItems[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Receipt{}, &model.NotFoundError{Kind: "shop item", ID: itemID}
	}
	item := st.ShopItems[idx]

	if item.Owned {
		if item.Type == model.ShopItemIcon {
			st.Profile.Icon = item.Value
			return Receipt{ItemID: item.ID, Outcome: OutcomeReequipped, Balance: st.Ledger.TotalPoints}, nil
		}
		return Receipt{ItemID: item.ID, Outcome: OutcomeAlreadyUsed, Balance: st.Ledger.TotalPoints}, nil
	}

	if st.Ledger.TotalPoints < item.Cost {
		return Receipt{}, &model.InsufficientPointsError{ItemID: item.ID, Cost: item.Cost, Available: st.Ledger.TotalPoints}
	}

	switch item.Type {
	case model.ShopItemIcon:
		st.Profile.Icon = item.Value
	case model.ShopItemUtility:
		if item.Value != model.UtilityStreakReset {
			return Receipt{}, fmt.Errorf("%w: %q", ErrUnknownUtility, item.Value)
		}
		st.Ledger.CurrentStreak = 1
	default:
		return Receipt{}, fmt.Errorf("shop: item %q has invalid type %q", item.ID, item.Type)
	}

	st.Ledger.TotalPoints -= item.Cost
	st.ShopItems[idx].Owned = true
	return Receipt{ItemID: item.ID, Outcome: OutcomePurchased, Spent: item.Cost, Balance: st.Ledger.TotalPoints}, nil
}
