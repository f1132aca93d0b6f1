// Package visualtest compares rendered scenes against reference PNGs.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // Max color channel difference found

	// Diff marks differing pixels in red over a grey copy of the actual
	// image. Set only when requested and the images differ.
	Diff *image.RGBA
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance: maximum allowed difference per color channel (0-255)
	Tolerance int

	// FuzzyRadius: if > 0, a pixel matches if it matches any pixel within
	// this radius. Absorbs one pixel antialiasing shifts at layer edges.
	FuzzyRadius int

	// MaxDifferentPercent: if > 0, pass if the percentage of different
	// pixels is <= this value
	MaxDifferentPercent float64

	WantDiff bool
}

// DefaultOptions returns sensible defaults for image comparison
func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// Compare compares two images pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds, expected.Bounds())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
	}
	var diffImg *image.RGBA
	if opts.WantDiff {
		diffImg = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			diff := channelDiff(actual.At(x, y), expected.At(x, y))
			result.MaxDifference = max(result.MaxDifference, diff)

			same := diff <= opts.Tolerance ||
				opts.FuzzyRadius > 0 && fuzzyMatch(actual, expected, x, y, opts.FuzzyRadius, opts.Tolerance)
			if !same {
				result.Match = false
				result.DifferentPixels++
			}
			if diffImg != nil {
				if same {
					// Same pixel - show in grayscale
					gray := color.GrayModel.Convert(actual.At(x, y)).(color.Gray).Y
					diffImg.Set(x, y, color.RGBA{gray, gray, gray, 255})
				} else {
					diffImg.Set(x, y, color.RGBA{255, 0, 0, 255})
				}
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}
	if !result.Match {
		result.Diff = diffImg
	}
	return result, nil
}

// CompareFile compares actual with the PNG at expectedPath.
func CompareFile(actual image.Image, expectedPath string, opts CompareOptions) (*CompareResult, error) {
	expected, err := LoadPNG(expectedPath)
	if err != nil {
		return nil, err
	}
	return Compare(actual, expected, opts)
}

// channelDiff returns the largest 8-bit channel difference of a and b.
func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	er, eg, eb, ea := b.RGBA()
	return max(
		absInt(int(ar>>8)-int(er>>8)),
		absInt(int(ag>>8)-int(eg>>8)),
		absInt(int(ab>>8)-int(eb>>8)),
		absInt(int(aa>>8)-int(ea>>8)),
	)
}

// fuzzyMatch checks if the actual pixel at (x, y) matches any expected pixel within radius
func fuzzyMatch(actual, expected image.Image, x, y, radius, tolerance int) bool {
	bounds := actual.Bounds()
	c := actual.At(x, y)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(c, expected.At(p.X, p.Y)) <= tolerance {
				return true
			}
		}
	}
	return false
}

// LoadPNG decodes the PNG file at path.
func LoadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// SavePNG saves an image as PNG
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
