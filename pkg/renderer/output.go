package renderer

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/df07/go-pathtracer/pkg/core"
)

// DefaultGamma is the display gamma applied when converting radiance to 8-bit
const DefaultGamma = 2.0

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	colorVec = colorVec.GammaCorrect(gamma)

	// Clamp to valid color range
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// ToRGBA converts the frame to an 8-bit image. Row 0 is the top of the image.
func (fb *FrameBuffer) ToRGBA(gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for row := 0; row < fb.Height; row++ {
		for col := 0; col < fb.Width; col++ {
			img.SetRGBA(col, row, vec3ToColor(fb.Pixels[row*fb.Width+col], gamma))
		}
	}
	return img
}

// WritePNG encodes the frame as a gamma-corrected PNG
func (fb *FrameBuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, fb.ToRGBA(DefaultGamma))
}
