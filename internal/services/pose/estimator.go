package pose

import (
	"fmt"
	"image"
	"os"

	"danceanalyzer/internal/config"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// NumKeypoints is the number of body keypoints produced per frame
// (COCO layout of the OpenPose-style network).
const NumKeypoints = 18

// COCO keypoint indices.
const (
	Nose = iota
	Neck
	RShoulder
	RElbow
	RWrist
	LShoulder
	LElbow
	LWrist
	RHip
	RKnee
	RAnkle
	LHip
	LKnee
	LAnkle
	REye
	LEye
	REar
	LEar
)

// Connections lists the keypoint pairs joined by skeleton limbs.
var Connections = [][2]int{
	{Neck, RShoulder}, {Neck, LShoulder},
	{RShoulder, RElbow}, {RElbow, RWrist},
	{LShoulder, LElbow}, {LElbow, LWrist},
	{Neck, RHip}, {RHip, RKnee}, {RKnee, RAnkle},
	{Neck, LHip}, {LHip, LKnee}, {LKnee, LAnkle},
	{Neck, Nose},
	{Nose, REye}, {REye, REar},
	{Nose, LEye}, {LEye, LEar},
}

// Keypoint is one body landmark with coordinates normalized to 0..1
// relative to the frame it was detected in.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

const netInputSize = 368

// minDetectedJoints is the number of confident joints required before a
// frame counts as containing a person at all.
const minDetectedJoints = 3

// Estimator runs pose inference on single frames with a gocv DNN network.
// A single Estimator must not be used from multiple goroutines at once.
type Estimator struct {
	net           gocv.Net
	modelPath     string
	configPath    string
	minConfidence float64
	ready         bool
	logger        *zap.Logger
}

// NewEstimator loads the pose network. A missing model is not fatal: the
// estimator is returned not-ready and Detect reports an error, so the
// server can still start and report the state via the health endpoint.
func NewEstimator(cfg *config.Config, logger *zap.Logger) *Estimator {
	e := &Estimator{
		modelPath:     cfg.ModelPath,
		configPath:    cfg.ModelConfigPath,
		minConfidence: cfg.MinConfidence,
		logger:        logger,
	}

	if err := e.initializeNet(); err != nil {
		e.logger.Warn("could not initialize pose network", zap.Error(err))
		return e
	}

	return e
}

func (e *Estimator) initializeNet() error {
	if _, err := os.Stat(e.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", e.modelPath)
	}

	net := gocv.ReadNet(e.modelPath, e.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load pose network from %s", e.modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return fmt.Errorf("failed to set network backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return fmt.Errorf("failed to set network target: %w", err)
	}

	e.net = net
	e.ready = true
	e.logger.Info("pose network initialized", zap.String("model", e.modelPath))
	return nil
}

// Ready reports whether the pose network loaded successfully.
func (e *Estimator) Ready() bool {
	return e.ready
}

// Close releases the network.
func (e *Estimator) Close() {
	if e.ready {
		e.net.Close()
		e.ready = false
	}
}

// Detect runs pose inference on one frame. It returns NumKeypoints keypoints
// with normalized coordinates, or nil when no person is visible.
func (e *Estimator) Detect(frame gocv.Mat) ([]Keypoint, error) {
	if !e.ready {
		return nil, fmt.Errorf("pose network not initialized")
	}
	if frame.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(netInputSize, netInputSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")

	output := e.net.Forward("")
	defer output.Close()

	keypoints, err := parseHeatmaps(output)
	if err != nil {
		return nil, err
	}

	confident := 0
	for _, kp := range keypoints {
		if kp.Confidence > e.minConfidence {
			confident++
		}
	}
	if confident < minDetectedJoints {
		return nil, nil
	}

	return keypoints, nil
}

// parseHeatmaps takes the raw network output (1 x C x H x W confidence maps,
// one map per body part) and picks the peak of each map as that part's
// location, normalized to 0..1.
func parseHeatmaps(output gocv.Mat) ([]Keypoint, error) {
	sizes := output.Size()
	if len(sizes) < 4 || sizes[1] < NumKeypoints {
		return nil, fmt.Errorf("unexpected network output shape %v", sizes)
	}
	mapH := sizes[2]
	mapW := sizes[3]

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	keypoints := make([]Keypoint, NumKeypoints)
	for part := 0; part < NumKeypoints; part++ {
		offset := part * mapH * mapW

		best := float32(-1)
		bestX, bestY := 0, 0
		for y := 0; y < mapH; y++ {
			row := offset + y*mapW
			for x := 0; x < mapW; x++ {
				if v := data[row+x]; v > best {
					best = v
					bestX, bestY = x, y
				}
			}
		}

		keypoints[part] = Keypoint{
			X:          float64(bestX) / float64(mapW),
			Y:          float64(bestY) / float64(mapH),
			Confidence: float64(best),
		}
	}

	return keypoints, nil
}
