package lines

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultNameOffset is the horizontal distance, in pixels, by which the first
// line must sit to the right of every other line to be read as a name label.
// It is tuned for 4K captures of dialogue boxes.
const DefaultNameOffset = 60

// Detection is one line as reported by an OCR service
type Detection struct {
	// BoundingBox is formatted "x,y,width,height"
	BoundingBox string
	// Words holds the raw word texts in service order. Nil means the
	// service reported the line without a word list.
	Words []string
}

// DetectedLine is a parsed OCR line with its accumulated text
type DetectedLine struct {
	X, Y, Width, Height int
	Text                string
}

// ParseError reports a bounding box that is not four comma separated integers
type ParseError struct {
	Input string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid bounding box %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid bounding box %q: field %s: %v", e.Input, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var boxFields = []string{"x", "y", "width", "height"}

// ParseBoundingBox parses "x,y,width,height" into a DetectedLine with empty text
func ParseBoundingBox(s string) (DetectedLine, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(boxFields) {
		return DetectedLine{}, &ParseError{
			Input: s,
			Err:   fmt.Errorf("expected %d fields, got %d", len(boxFields), len(parts)),
		}
	}

	var vals [4]int
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return DetectedLine{}, &ParseError{Input: s, Field: boxFields[i], Err: err}
		}
		vals[i] = int(v)
	}

	return DetectedLine{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// AppendWords trims every word and appends them to the line text with no separator
func (l *DetectedLine) AppendWords(words []string) {
	var b strings.Builder
	b.WriteString(l.Text)
	for _, w := range words {
		b.WriteString(strings.TrimSpace(w))
	}
	l.Text = b.String()
}

// Compare orders lines top to bottom, then left to right.
// Width, height and text are ignored.
func Compare(a, b DetectedLine) int {
	switch {
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	}
	return 0
}

// Sort puts lines in reading order, keeping the input order of ties
func Sort(lines []DetectedLine) {
	slices.SortStableFunc(lines, Compare)
}

// Parse converts raw detections into lines, in input order. The first
// malformed bounding box aborts the whole set.
func Parse(detections []Detection) ([]DetectedLine, error) {
	out := make([]DetectedLine, 0, len(detections))
	for i, d := range detections {
		line, err := ParseBoundingBox(d.BoundingBox)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", i, err)
		}
		line.AppendWords(d.Words)
		out = append(out, line)
	}
	return out, nil
}
