package models

// Category groups shareable items.
type Category struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
}

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"required,hexcolor"`
	Icon        string `json:"icon,omitempty"`
}

// Rarity is the tier of a badge.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Rarities lists every tier from lowest to highest.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// Valid reports whether r is a known tier.
func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}

// Badge is an achievement a user unlocks with points.
type Badge struct {
	ID             ID     `json:"id,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Rarity         Rarity `json:"rarity"`
	PointsRequired int    `json:"pointsRequired"`
	Icon           string `json:"icon,omitempty"`
}

// BadgeInput is the create/update payload for a badge.
type BadgeInput struct {
	Name           string `json:"name" validate:"required,max=100"`
	Description    string `json:"description" validate:"max=500"`
	Rarity         Rarity `json:"rarity" validate:"required,oneof=COMMON RARE EPIC LEGENDARY"`
	PointsRequired int    `json:"pointsRequired" validate:"gte=0"`
	Icon           string `json:"icon,omitempty"`
}
