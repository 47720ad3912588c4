package deck

// Hand is the elemental tag of a card. The three hands form a fixed
// advantage cycle: fire beats grass, water beats fire, grass beats water.
type Hand string

const (
	HandFire  Hand = "fire"
	HandWater Hand = "water"
	HandGrass Hand = "grass"
)

// Recognized reports whether h is one of the three element tags.
func (h Hand) Recognized() bool {
	return h == HandFire || h == HandWater || h == HandGrass
}

// Card is a single entry of a player's deck.
// tygo:generate
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Hand     Hand   `json:"hand"`
	MoveName string `json:"moveName"`
}

// Deck is an ordered sequence of cards, as built by the deck-builder client.
type Deck []Card

const (
	// MaxDeckSize is the maximum number of cards in a submitted deck.
	MaxDeckSize = 7

	// MaxNameLength bounds both Name and MoveName, in characters.
	MaxNameLength = 30

	// MaxImageBytes bounds the encoded size of a card's embedded image.
	MaxImageBytes = 500 * 1024
)
