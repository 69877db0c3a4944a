// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visualize

// colormaps are sampled stops of the matplotlib colormaps of the same name,
// dark to light.
var colormaps = map[string][]string{
	"viridis": {"#440154", "#482878", "#3e4a89", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"plasma":  {"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"},
	"inferno": {"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4"},
	"magma":   {"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f", "#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf"},
	"cividis": {"#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#fee838"},
	"greys":   {"#000000", "#1b1b1b", "#373737", "#525252", "#6d6d6d", "#888888", "#a0a0a0", "#b9b9b9", "#d2d2d2", "#e8e8e8"},
}

// palette returns the stops of name, falling back to viridis.
func palette(name string) []string {
	if p, ok := colormaps[name]; ok {
		return p
	}
	return colormaps["viridis"]
}
