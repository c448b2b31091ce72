package lanes

// Palette is the fixed branch color cycle. Color indexes wrap around it,
// so two branches share a hue only when more branches overlap than the
// palette has entries.
var Palette = []string{
	"#0085d9",
	"#d9008f",
	"#00d90a",
	"#d98500",
	"#a300d9",
	"#ff0000",
	"#00d9cc",
	"#e138e8",
	"#85d900",
	"#dc5b23",
	"#6f24d6",
	"#ffcc00",
}

// ColorHex maps a color index to its palette entry.
func ColorHex(color int) string {
	if color < 0 {
		color = 0
	}
	return Palette[color%len(Palette)]
}
