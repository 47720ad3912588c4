package deck

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Cards carry their images inline as base64 data URLs
// (data:image/png;base64,....) rather than external references, so the
// server never fetches anything on a client's behalf.

var errBadDataURL = errors.New("not a base64 image data URL")

// parseImageRef splits an image data URL into its media type and decoded bytes.
func parseImageRef(ref string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return "", nil, errBadDataURL
	}

	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || !strings.HasPrefix(mediaType, "image/") {
		return "", nil, errBadDataURL
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errBadDataURL
	}

	return mediaType, data, nil
}

// checkImageRef validates the shape and encoded size of an image data URL
// without paying for a base64 decode.
func checkImageRef(ref string) error {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return errBadDataURL
	}

	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || !strings.HasPrefix(mediaType, "image/") {
		return errBadDataURL
	}

	if len(payload) > MaxImageBytes {
		return errors.New("image data exceeds size limit")
	}

	return nil
}

// formatImageRef builds an image data URL from raw encoded bytes.
func formatImageRef(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
