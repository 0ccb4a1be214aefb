package dto

import "danceanalyzer/internal/services/storage"

// OutputsData is the paginated listing of the processed directory.
type OutputsData struct {
	Outputs     []storage.FileInfo `json:"outputs"`
	Size        int64              `json:"size"`
	MaxSize     int64              `json:"maxSize"`
	Length      int                `json:"length"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	Limit       int                `json:"pageSize"`
}

// DebugFiles lists the contents of both working directories.
type DebugFiles struct {
	Uploads   []storage.FileInfo `json:"uploads"`
	Processed []storage.FileInfo `json:"processed"`
}
