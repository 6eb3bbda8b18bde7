package components

import (
	"image"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// Constraint represents a size rule for layout purposes.
type Constraint interface {
	Apply(size int) int
}

// Percent constrains a dimension to a percentage of the available span.
type Percent int

// Apply applies the percentage constraint.
func (p Percent) Apply(size int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return size
	}
	return size * int(p) / 100
}

// Fixed constrains a span to an exact value (clamped to the available space).
type Fixed int

// Apply applies the fixed constraint.
func (f Fixed) Apply(size int) int {
	if f < 0 {
		return 0
	}
	if int(f) > size {
		return size
	}
	return int(f)
}

// SplitVertical divides an area into top and bottom rectangles using the
// provided constraint.
func SplitVertical(area image.Rectangle, constraint Constraint) (top image.Rectangle, bottom image.Rectangle) {
	height := min(constraint.Apply(area.Dy()), area.Dy())
	top = image.Rectangle{Min: area.Min, Max: image.Point{X: area.Max.X, Y: area.Min.Y + height}}
	bottom = image.Rectangle{Min: image.Point{X: area.Min.X, Y: area.Min.Y + height}, Max: area.Max}
	return
}

// SplitHorizontal divides an area into left and right rectangles using the
// provided constraint.
func SplitHorizontal(area image.Rectangle, constraint Constraint) (left image.Rectangle, right image.Rectangle) {
	width := min(constraint.Apply(area.Dx()), area.Dx())
	left = image.Rectangle{Min: area.Min, Max: image.Point{X: area.Min.X + width, Y: area.Max.Y}}
	right = image.Rectangle{Min: image.Point{X: area.Min.X + width, Y: area.Min.Y}, Max: area.Max}
	return
}

// ViewArea returns the full window rectangle anchored at the origin with sane defaults.
func ViewArea(width, height int) image.Rectangle {
	return image.Rect(0, 0, ViewWidth(width), max(height, 0))
}

// ContentArea returns the rectangle representing the drawable content once
// global padding is removed. Width is clamped to ContentWidth.
func ContentArea(width, height int) image.Rectangle {
	view := ViewArea(width, height)
	contentHeight := max(view.Dy()-theme.ViewTopPadding-theme.ViewBottomPadding, 0)
	return image.Rect(
		view.Min.X+theme.ViewHorizontalPadding,
		view.Min.Y+theme.ViewTopPadding,
		view.Min.X+theme.ViewHorizontalPadding+ContentWidth(view.Dx()),
		view.Min.Y+theme.ViewTopPadding+contentHeight,
	)
}
