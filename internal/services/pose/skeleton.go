package pose

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

const (
	limbThickness = 2
	jointRadius   = 4
)

var (
	limbColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	jointColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// DrawSkeleton renders the skeleton on a black canvas of the given size:
// green lines between connected keypoints, red dots at the joints. Keypoints
// at or below minConfidence are left out. The caller owns the returned Mat.
func DrawSkeleton(width, height int, keypoints []Keypoint, minConfidence float64) gocv.Mat {
	canvas := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	if len(keypoints) < NumKeypoints {
		return canvas
	}

	for _, conn := range Connections {
		a := keypoints[conn[0]]
		b := keypoints[conn[1]]
		if a.Confidence > minConfidence && b.Confidence > minConfidence {
			gocv.Line(&canvas, toPixel(a, width, height), toPixel(b, width, height), limbColor, limbThickness)
		}
	}

	for _, kp := range keypoints {
		if kp.Confidence > minConfidence {
			gocv.Circle(&canvas, toPixel(kp, width, height), jointRadius, jointColor, -1)
		}
	}

	return canvas
}

func toPixel(kp Keypoint, width, height int) image.Point {
	return image.Pt(int(kp.X*float64(width)), int(kp.Y*float64(height)))
}
