package skybase

// ListResponse is one page of file names.
type ListResponse struct {
	Paging Paging   `json:"paging"`
	Names  []string `json:"names"`
}

// ===================================================================================================

// PutFileResponse represents the response from a completed file upload.
type PutFileResponse struct {
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	DriveName string `json:"drive_name"`
}

// ===================================================================================================

// DeleteFilesResponse represents the response from a bulk file delete.
type DeleteFilesResponse struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// ===================================================================================================

// UploadOptions tunes a chunked upload.
type UploadOptions struct {
	// Concurrency bounds how many parts upload in parallel. Zero or one
	// uploads parts sequentially.
	Concurrency int
}
