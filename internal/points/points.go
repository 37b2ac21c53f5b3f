// Package points implements the scoring model for waste submissions.
package points

import "fmt"

// Category is the closed set of waste categories a collector can record.
type Category string

const (
	Dry       Category = "DRY"
	Wet       Category = "WET"
	Hazardous Category = "HAZARDOUS"
	Mixed     Category = "MIXED"
)

// Quality score bounds accepted at the API boundary.
const (
	MinQuality = 1
	MaxQuality = 10
)

// Base returns the per-category base points. Unrecognized categories score zero.
func (c Category) Base() int {
	switch c {
	case Dry:
		return 10
	case Wet:
		return 8
	case Hazardous:
		return 15
	case Mixed:
		return 3
	default:
		return 0
	}
}

// Compute returns the points earned for a submission: base points scaled by the
// quality score out of 10, with truncating integer division. It performs no
// bounds checking on quality; callers validate with ValidQuality first.
func Compute(c Category, quality int) int {
	return c.Base() * quality / 10
}

// ValidQuality reports whether a quality score is inside the accepted range.
func ValidQuality(quality int) bool {
	return quality >= MinQuality && quality <= MaxQuality
}

// ParseCategory maps a request string onto the closed category set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case Dry, Wet, Hazardous, Mixed:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown waste category %q", s)
	}
}
