package lines

import "strings"

// Reconstructor joins OCR lines into a single reading-order string
type Reconstructor struct {
	// NameOffset is the minimum horizontal gap (exclusive) between the first
	// line and each remaining line for the first line to be a name label.
	NameOffset int
}

// New returns a Reconstructor using the given name label offset
func New(nameOffset int) Reconstructor {
	return Reconstructor{NameOffset: nameOffset}
}

// Reconstruct uses DefaultNameOffset
func Reconstruct(detections []Detection) (string, error) {
	return New(DefaultNameOffset).Reconstruct(detections)
}

// Reconstruct parses, sorts and concatenates detections. When the first line
// is a name label the result is "Name: rest". An empty input yields "".
func (r Reconstructor) Reconstruct(detections []Detection) (string, error) {
	parsed, err := Parse(detections)
	if err != nil {
		return "", err
	}
	Sort(parsed)
	return r.Join(parsed), nil
}

// Join concatenates already sorted lines, applying the name label rule
func (r Reconstructor) Join(sorted []DetectedLine) string {
	var b strings.Builder
	rest := sorted
	if r.IsNameLabel(sorted) {
		b.WriteString(sorted[0].Text)
		b.WriteString(": ")
		rest = sorted[1:]
	}
	for _, l := range rest {
		b.WriteString(l.Text)
	}
	return b.String()
}

// IsNameLabel reports whether the first of the sorted lines sits more than
// NameOffset pixels right of every other line. A single line never qualifies.
func (r Reconstructor) IsNameLabel(sorted []DetectedLine) bool {
	if len(sorted) < 2 {
		return false
	}
	first := sorted[0]
	for _, l := range sorted[1:] {
		if first.X-l.X <= r.NameOffset {
			return false
		}
	}
	return true
}
