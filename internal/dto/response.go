package dto

// UploadResponse is returned on a successful ingestion. The UUID is the only
// identifier the caller ever gets.
type UploadResponse struct {
	Success bool   `json:"success"`
	UUID    string `json:"uuid"`
}

// FileInfoResponse describes a stored file without its content.
type FileInfoResponse struct {
	Success       bool   `json:"success"`
	FileName      string `json:"file_name"`
	AvailableTill int64  `json:"available_till"`
}
