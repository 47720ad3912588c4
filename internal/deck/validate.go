package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidDeck is reported once for the whole deck when any structural,
// size, or type check fails. There is no partial acceptance.
var ErrInvalidDeck = errors.New("INVALID_DECK: deck failed validation")

// cardFields is the exact field set every deck entry must expose.
var cardFields = []string{"id", "name", "imageUrl", "hand", "moveName"}

// Validate checks a raw, untrusted deck payload and parses it into typed
// cards. Every entry must be a record with exactly the expected five string
// fields, names must fit the length limit, the hand must be a recognized
// element, and the image must be an inline data URL within the size limit.
func Validate(raw json.RawMessage) (Deck, error) {
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: payload is not a card list", ErrInvalidDeck)
	}
	if entries == nil {
		// JSON null unmarshals into a nil slice without error.
		return nil, fmt.Errorf("%w: payload is not a card list", ErrInvalidDeck)
	}

	if len(entries) > MaxDeckSize {
		return nil, fmt.Errorf("%w: more than %d cards", ErrInvalidDeck, MaxDeckSize)
	}

	out := make(Deck, 0, len(entries))
	for i, entry := range entries {
		card, err := validateCard(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", ErrInvalidDeck, i, err)
		}
		out = append(out, card)
	}

	return out, nil
}

func validateCard(entry map[string]any) (Card, error) {
	// Exactly the known fields, nothing extra smuggled alongside them.
	if len(entry) != len(cardFields) {
		return Card{}, errors.New("unexpected field set")
	}

	fields := make(map[string]string, len(cardFields))
	for _, name := range cardFields {
		value, ok := entry[name]
		if !ok {
			return Card{}, fmt.Errorf("missing field %q", name)
		}
		s, ok := value.(string)
		if !ok {
			return Card{}, fmt.Errorf("field %q is not a string", name)
		}
		fields[name] = s
	}

	if utf8.RuneCountInString(fields["name"]) > MaxNameLength {
		return Card{}, fmt.Errorf("name longer than %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(fields["moveName"]) > MaxNameLength {
		return Card{}, fmt.Errorf("move name longer than %d characters", MaxNameLength)
	}

	hand := Hand(fields["hand"])
	if !hand.Recognized() {
		return Card{}, fmt.Errorf("unrecognized hand %q", fields["hand"])
	}

	if err := checkImageRef(fields["imageUrl"]); err != nil {
		return Card{}, err
	}

	return Card{
		ID:       fields["id"],
		Name:     fields["name"],
		ImageURL: fields["imageUrl"],
		Hand:     hand,
		MoveName: fields["moveName"],
	}, nil
}
