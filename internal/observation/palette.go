package observation

import "image/color"

// PaletteSize is the number of entries in the semantic color table. Semantic
// ids are reduced modulo this size before lookup.
const PaletteSize = 40

// D3Colors40 is the default 40-entry semantic color table (the d3 category20
// scale followed by category20b). The table is supplied externally in the
// sensor subsystem; this copy is the default used when no override is given.
var D3Colors40 = [PaletteSize][3]uint8{
	{31, 119, 180}, {174, 199, 232}, {255, 127, 14}, {255, 187, 120},
	{44, 160, 44}, {152, 223, 138}, {214, 39, 40}, {255, 152, 150},
	{148, 103, 189}, {197, 176, 213}, {140, 86, 75}, {196, 156, 148},
	{227, 119, 194}, {247, 182, 210}, {127, 127, 127}, {199, 199, 199},
	{188, 189, 34}, {219, 219, 141}, {23, 190, 207}, {158, 218, 229},
	{57, 59, 121}, {82, 84, 163}, {107, 110, 207}, {156, 158, 222},
	{99, 121, 57}, {140, 162, 82}, {181, 207, 107}, {206, 219, 156},
	{140, 109, 49}, {189, 158, 57}, {231, 186, 82}, {231, 203, 148},
	{132, 60, 57}, {173, 73, 74}, {214, 97, 107}, {231, 150, 156},
	{123, 65, 115}, {165, 81, 148}, {206, 109, 189}, {222, 158, 214},
}

// semanticPalette expands a 40-entry RGB table into an opaque color.Palette
// usable with image.Paletted.
func semanticPalette(table [PaletteSize][3]uint8) color.Palette {
	p := make(color.Palette, PaletteSize)
	for i, c := range table {
		p[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
	}
	return p
}

// PaletteIndex reduces a semantic id to its palette slot. Negative ids wrap
// around rather than producing a negative index.
func PaletteIndex(id int32) uint8 {
	m := id % PaletteSize
	if m < 0 {
		m += PaletteSize
	}
	return uint8(m)
}
