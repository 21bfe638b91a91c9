// Package overlay draws the tracked face onto camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/stillness"
)

// Dashboard palette.
var (
	Blue   = color.RGBA{R: 0x31, G: 0x82, B: 0xf6, A: 0xff}
	Orange = color.RGBA{R: 0xf6, G: 0xad, B: 0x55, A: 0xff}
	Red    = color.RGBA{R: 0xf5, G: 0x65, B: 0x65, A: 0xff}
)

// Style is the stroke used for a face box.
type Style struct {
	Color     color.RGBA
	Thickness int
}

// StyleFor returns the box style for an alert tier.
func StyleFor(a stillness.Alert) Style {
	switch a {
	case stillness.Critical:
		return Style{Color: Red, Thickness: 3}
	case stillness.Warning:
		return Style{Color: Orange, Thickness: 3}
	default:
		return Style{Color: Blue, Thickness: 2}
	}
}

// Box converts a detection to an integer pixel rectangle.
func Box(d detection.Detection) image.Rectangle {
	return image.Rect(
		int(math.Round(d.X)),
		int(math.Round(d.Y)),
		int(math.Round(d.X+d.W)),
		int(math.Round(d.Y+d.H)),
	)
}

// Render decodes frame, draws face (if any) styled by alert and
// re-encodes it as JPEG. Without a face the frame is returned as is.
func Render(frame []byte, face *detection.Detection, alert stillness.Alert) ([]byte, error) {
	if face == nil {
		return frame, nil
	}

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	style := StyleFor(alert)
	gocv.Rectangle(&img, Box(*face), style.Color, style.Thickness)

	cx, cy := face.Center()
	gocv.Circle(&img, image.Pt(int(math.Round(cx)), int(math.Round(cy))), 3, Blue, -1)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
