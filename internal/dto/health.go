package dto

// HealthData reports service and pose model availability.
type HealthData struct {
	Status        string `json:"status"`
	ModelLoaded   bool   `json:"model_loaded"`
	OpenCVVersion string `json:"opencv_version"`
	Viewers       int    `json:"viewers"`
}
