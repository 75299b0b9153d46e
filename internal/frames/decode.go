package frames

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode opens path and returns its luminance channel.
func Decode(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, err := DecodeReader(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeReader decodes any registered image format to 8-bit luma.
func DecodeReader(r io.Reader) (*image.Gray, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ToLuma(src), nil
}

// ToLuma converts src to grayscale with integer Rec. 709 weights,
// truncating. Alpha is ignored; channels are read unpremultiplied.
func ToLuma(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}

	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < b.Dx(); x++ {
				p := row[x*4 : x*4+3]
				out.Pix[y*out.Stride+x] = luma(p[0], p[1], p[2])
			}
		}
		return out
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.Pix[y*out.Stride+x] = luma(c.R, c.G, c.B)
		}
	}
	return out
}

func luma(r, g, b uint8) uint8 {
	return uint8((2126*uint32(r) + 7152*uint32(g) + 722*uint32(b)) / 10000)
}

// Info describes a frame file without decoding its pixels.
type Info struct {
	Path   string
	Format string
	Width  int
	Height int
	Bytes  int64
}

// Probe reads only the image header of path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("stat frame: %w", err)
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return Info{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: st.Size()}, nil
}
