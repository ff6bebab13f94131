package style

import "github.com/charmbracelet/lipgloss"

var (
	Text    = lipgloss.Color("#cdd6f4")
	Surface = lipgloss.Color("#313244")

	Mauve    = lipgloss.Color("#cba6f7")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Teal     = lipgloss.Color("#94e2d5")
	Sky      = lipgloss.Color("#89dceb")
	Blue     = lipgloss.Color("#89b4fa")
	Lavender = lipgloss.Color("#b4befe")
)

// layerColors cycle over the layers of a composition, bottom first.
var layerColors = []lipgloss.Color{Blue, Green, Peach, Mauve, Teal, Yellow, Sky, Lavender, Red}

// Layer returns a tag renderer for the layer at index i.
func Layer(i int) func(string) string {
	if i < 0 {
		return Tag(Text, Surface)
	}
	return Tag(Surface, layerColors[i%len(layerColors)])
}
