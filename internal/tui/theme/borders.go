package theme

import "github.com/charmbracelet/lipgloss"

// BorderVariant enumerates the reusable border shapes.
type BorderVariant string

const (
	BorderNormal  BorderVariant = "normal"
	BorderRounded BorderVariant = "rounded"
	BorderThick   BorderVariant = "thick"
	BorderHidden  BorderVariant = "hidden"

	DefaultCardBorder  = BorderRounded
	FocusedCardBorder  = BorderThick
	DefaultModalBorder = BorderRounded
)

// BorderFor returns the lipgloss border definition for the variant.
func BorderFor(variant BorderVariant) lipgloss.Border {
	switch variant {
	case BorderRounded:
		return lipgloss.RoundedBorder()
	case BorderThick:
		return lipgloss.ThickBorder()
	case BorderHidden:
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// CardBorder picks the panel border for the given focus state.
func CardBorder(focused bool) BorderVariant {
	if focused {
		return FocusedCardBorder
	}
	return DefaultCardBorder
}
