// Package qrcode builds and parses the reference strings rendered as QR codes.
// No image encoding happens here: rendering is delegated to an external service
// that turns the reference into a bitmap.
package qrcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const refPrefix = "USER_ID:"

// DefaultServiceURL is the external image service used when none is configured.
const DefaultServiceURL = "https://api.qrserver.com/v1"

// ErrBadReference indicates the input does not carry the user-reference prefix.
var ErrBadReference = errors.New("not a user reference")

// BuildReference returns the reference payload for a user's QR code.
func BuildReference(userID int64) string {
	return refPrefix + strconv.FormatInt(userID, 10)
}

// ParseUserID recovers the user ID from a reference string. It returns -1 with
// a classified error when the prefix is missing or the suffix is not a base-10
// integer.
func ParseUserID(reference string) (int64, error) {
	rest, ok := strings.CutPrefix(reference, refPrefix)
	if !ok {
		return -1, ErrBadReference
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return -1, fmt.Errorf("parse user reference suffix: %w", err)
	}
	return id, nil
}

// Generator builds display URLs against a configured external image service.
type Generator struct {
	baseURL string
}

// New creates a Generator. An empty baseURL falls back to DefaultServiceURL.
func New(baseURL string) *Generator {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultServiceURL
	}
	return &Generator{baseURL: strings.TrimRight(baseURL, "/")}
}

// DisplayURL returns the external service URL that renders the reference as a
// 200x200 QR image. The reference is embedded unescaped; the prefix and digit
// payload are URL-safe as produced by BuildReference.
func (g *Generator) DisplayURL(reference string) string {
	return g.baseURL + "/create-qr-code/?size=200x200&data=" + reference
}

// UserDisplayURL is a convenience combining BuildReference and DisplayURL.
func (g *Generator) UserDisplayURL(userID int64) string {
	return g.DisplayURL(BuildReference(userID))
}
