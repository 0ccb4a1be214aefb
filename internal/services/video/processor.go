package video

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"time"

	"danceanalyzer/internal/config"
	"danceanalyzer/internal/metrics"
	"danceanalyzer/internal/services/pose"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// fallbackFPS is used when the container does not report a frame rate.
const fallbackFPS = 25

// outputCodec is H.264 for browser playback.
const outputCodec = "avc1"

var labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}

// PoseDetector runs pose inference on a single frame. A nil keypoint slice
// means no person was found in the frame.
type PoseDetector interface {
	Detect(frame gocv.Mat) ([]pose.Keypoint, error)
}

// Result summarizes one processed video.
type Result struct {
	Frames          int     `json:"frames"`
	ProcessedFrames int     `json:"processed_frames"`
	FPS             float64 `json:"fps"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	OutputSize      int64   `json:"size"`
}

// ProgressFunc is called periodically with the number of frames written so
// far and the total frame count reported by the container (0 if unknown).
type ProgressFunc func(frame, total int)

// Processor turns an input video into a side-by-side original|skeleton video.
type Processor struct {
	maxDimension  int
	minConfidence float64
	progressEvery int
	codec         string
	logger        *zap.Logger
}

func NewProcessor(cfg *config.Config, logger *zap.Logger) *Processor {
	return &Processor{
		maxDimension:  cfg.MaxDimension,
		minConfidence: cfg.MinConfidence,
		progressEvery: cfg.ProgressInterval,
		codec:         outputCodec,
		logger:        logger,
	}
}

// Process decodes inputPath frame by frame, runs pose inference, draws the
// skeleton on a black canvas and writes original|skeleton side by side to
// outputPath. It blocks until the whole video is encoded.
func (p *Processor) Process(detector PoseDetector, inputPath, outputPath string, onProgress ProgressFunc) (*Result, error) {
	capture, err := gocv.VideoCaptureFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open video %s: %w", inputPath, err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = fallbackFPS
	}
	srcWidth := int(capture.Get(gocv.VideoCaptureFrameWidth))
	srcHeight := int(capture.Get(gocv.VideoCaptureFrameHeight))
	totalFrames := int(capture.Get(gocv.VideoCaptureFrameCount))

	width, height := fitDimensions(srcWidth, srcHeight, p.maxDimension)
	if width != srcWidth || height != srcHeight {
		p.logger.Info("resizing input",
			zap.Int("src_width", srcWidth), zap.Int("src_height", srcHeight),
			zap.Int("width", width), zap.Int("height", height))
	}

	writer, err := gocv.VideoWriterFile(outputPath, p.codec, fps, width*2, height, true)
	if err != nil {
		return nil, fmt.Errorf("cannot create output video %s: %w", outputPath, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("cannot open encoder %q for %s", p.codec, outputPath)
	}

	frameCount := 0
	processedFrames := 0
	var inferenceTime time.Duration

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if ok := capture.Read(&frame); !ok {
			break
		}
		if frame.Empty() {
			continue
		}

		if width != srcWidth || height != srcHeight {
			gocv.Resize(frame, &frame, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
		}

		inferStart := time.Now()
		keypoints, err := detector.Detect(frame)
		if err != nil {
			writer.Close()
			return nil, fmt.Errorf("pose inference failed at frame %d: %w", frameCount, err)
		}
		inferenceTime += time.Since(inferStart)

		var skeleton gocv.Mat
		if keypoints != nil {
			skeleton = pose.DrawSkeleton(width, height, keypoints, p.minConfidence)
			processedFrames++
		} else {
			// no person in this frame, compose a plain black canvas
			skeleton = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		}

		combined := gocv.NewMat()
		if err := gocv.Hconcat(frame, skeleton, &combined); err != nil {
			skeleton.Close()
			combined.Close()
			writer.Close()
			return nil, fmt.Errorf("failed to compose frame %d: %w", frameCount, err)
		}

		gocv.PutText(&combined, "Original", image.Pt(10, 30), gocv.FontHersheySimplex, 1, labelColor, 2)
		gocv.PutText(&combined, "Skeleton", image.Pt(width+10, 30), gocv.FontHersheySimplex, 1, labelColor, 2)

		err = writer.Write(combined)
		skeleton.Close()
		combined.Close()
		if err != nil {
			writer.Close()
			return nil, fmt.Errorf("failed to encode frame %d: %w", frameCount, err)
		}

		frameCount++
		if onProgress != nil && p.progressEvery > 0 && frameCount%p.progressEvery == 0 {
			onProgress(frameCount, totalFrames)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output video: %w", err)
	}

	if frameCount == 0 {
		return nil, fmt.Errorf("no frames decoded from %s", inputPath)
	}

	metrics.ProcessingDuration.WithLabelValues("inference").Observe(inferenceTime.Seconds())
	metrics.FramesProcessedTotal.Add(float64(frameCount))
	metrics.PoseDetectionsTotal.Add(float64(processedFrames))

	var outputSize int64
	if info, err := os.Stat(outputPath); err == nil {
		outputSize = info.Size()
	}

	return &Result{
		Frames:          frameCount,
		ProcessedFrames: processedFrames,
		FPS:             fps,
		Width:           width * 2,
		Height:          height,
		OutputSize:      outputSize,
	}, nil
}

// fitDimensions scales (width, height) down to fit maxDim, preserving the
// aspect ratio. Dimensions are kept even, the H.264 encoder requires it.
func fitDimensions(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return evenDim(width), evenDim(height)
	}

	longest := width
	if height > longest {
		longest = height
	}
	scale := float64(maxDim) / float64(longest)

	return evenDim(int(math.Round(float64(width) * scale))), evenDim(int(math.Round(float64(height) * scale)))
}

func evenDim(d int) int {
	if d%2 != 0 {
		return d - 1
	}
	return d
}
