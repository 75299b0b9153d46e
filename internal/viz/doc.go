// Package viz turns grayscale frames into ASCII art and holds the shared
// terminal styles.
//
// Rendering samples the source with nearest-neighbour lookup at a single
// uniform scale, then applies a 2x2 ordered dither:
//
//	1 3
//	4 2
//
// A cell whose luminance is strictly above weight/5*255 becomes the last
// glyph of [Ramp]; every other cell becomes the first. Only two glyphs ever
// appear in the output even though the ramp is much longer.
package viz
