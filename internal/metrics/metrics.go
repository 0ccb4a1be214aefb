package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "danceanalyzer_videos_processed_total",
		Help: "Total number of uploaded videos processed, by outcome",
	}, []string{"status"})

	ProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "danceanalyzer_processing_duration_seconds",
		Help:    "Duration of the video processing pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "danceanalyzer_frames_processed_total",
		Help: "Total number of video frames run through the pipeline",
	})

	PoseDetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "danceanalyzer_pose_detections_total",
		Help: "Total number of frames where a pose was detected",
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "danceanalyzer_active_jobs",
		Help: "Number of uploads currently being processed",
	})
)
