// Package theme holds the fixed theme and filter vocabularies shared by the
// API layer and the PDF exporter, so neither side carries its own copy of the
// mapping literals.
package theme

// Theme selects the font family and colour palette used when rendering an
// album, both in listings and in the exported document.
type Theme string

const (
	Classic Theme = "classic"
	Modern  Theme = "modern"
	Retro   Theme = "retro"
)

// RGB is a colour triple in the 0-255 range.
type RGB struct {
	R, G, B int
}

// Style bundles the presentation parameters for one theme.
type Style struct {
	DisplayName string
	FontFamily  string
	TitleColor  RGB
	BodyColor   RGB
	AccentColor RGB
}

var themeStyles = map[Theme]Style{
	Classic: {
		DisplayName: "Classic",
		FontFamily:  "Times",
		TitleColor:  RGB{33, 37, 41},
		BodyColor:   RGB{73, 80, 87},
		AccentColor: RGB{134, 94, 60},
	},
	Modern: {
		DisplayName: "Modern",
		FontFamily:  "Helvetica",
		TitleColor:  RGB{17, 24, 39},
		BodyColor:   RGB{55, 65, 81},
		AccentColor: RGB{37, 99, 235},
	},
	Retro: {
		DisplayName: "Retro",
		FontFamily:  "Courier",
		TitleColor:  RGB{68, 48, 34},
		BodyColor:   RGB{92, 74, 58},
		AccentColor: RGB{191, 111, 74},
	},
}

// DefaultTheme is applied when an album is created without one.
const DefaultTheme = Classic

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	_, ok := themeStyles[t]
	return ok
}

// Style returns the presentation parameters for t, falling back to the
// default theme for unknown values.
func (t Theme) Style() Style {
	if s, ok := themeStyles[t]; ok {
		return s
	}
	return themeStyles[DefaultTheme]
}

// Themes lists the known themes in a stable order.
func Themes() []Theme {
	return []Theme{Classic, Modern, Retro}
}

// Filter selects the cosmetic adjustment applied to a photo when it is
// displayed or embedded in an export. The pixel transforms live in the
// picture package.
type Filter string

const (
	Original Filter = "original"
	Mono     Filter = "mono"
	Vivid    Filter = "vivid"
	Fade     Filter = "fade"
)

var filterNames = map[Filter]string{
	Original: "Original",
	Mono:     "Mono",
	Vivid:    "Vivid",
	Fade:     "Fade",
}

// DefaultFilter is assigned to every photo on import.
const DefaultFilter = Original

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	_, ok := filterNames[f]
	return ok
}

// DisplayName returns the user-facing name for f.
func (f Filter) DisplayName() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return filterNames[DefaultFilter]
}

// Filters lists the known filters in a stable order.
func Filters() []Filter {
	return []Filter{Original, Mono, Vivid, Fade}
}
