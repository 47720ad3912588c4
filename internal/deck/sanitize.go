package deck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/disintegration/imaging"
	"github.com/microcosm-cc/bluemonday"

	// Browser deck builders export webp alongside png/jpeg.
	_ "golang.org/x/image/webp"
)

// ErrImageProcessing is reported for the whole deck when any single card's
// image cannot be decoded or re-encoded. No partial deck is ever accepted.
var ErrImageProcessing = errors.New("IMAGE_PROCESSING_FAILED: could not process card image")

const (
	// Card art is displayed at most at 200x280; anything larger is wasted
	// bytes relayed to the opponent.
	imageBoundWidth  = 200
	imageBoundHeight = 280

	jpegQuality = 80
)

// textPolicy strips every tag and attribute; only visible text survives.
var textPolicy = bluemonday.StrictPolicy()

// Sanitize converts a validated deck into its safe canonical form: card text
// is reduced to plain text and every embedded image is forced through a
// bounded decode/resize/re-encode. This is the trust boundary for
// user-supplied deck data; nothing upstream of it is ever relayed to the
// opposing player.
func Sanitize(ctx context.Context, d Deck) (Deck, error) {
	out := make(Deck, len(d))
	for i, card := range d {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card.Name = stripMarkup(card.Name)
		card.MoveName = stripMarkup(card.MoveName)

		ref, err := transcodeImage(card.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
		}
		card.ImageURL = ref

		out[i] = card
	}

	return out, nil
}

func stripMarkup(s string) string {
	// The policy entity-escapes its plain-text output; unescape so "A&B"
	// round-trips as visible text rather than "A&amp;B".
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// transcodeImage decodes an embedded image, fits it within the display
// bounds without upscaling, and re-encodes it as JPEG at fixed quality.
// Forcing every accepted image through this path neutralizes malformed
// payloads and decompression bombs.
func transcodeImage(ref string) (string, error) {
	_, data, err := parseImageRef(ref)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	img = imaging.Fit(img, imageBoundWidth, imageBoundHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", err
	}

	return formatImageRef("image/jpeg", buf.Bytes()), nil
}
