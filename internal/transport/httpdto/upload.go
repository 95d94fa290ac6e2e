package httpdto

// PresignUploadRequest is the body for POST /api/uploads/presign.
type PresignUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required"`
}

// PresignUploadResponse carries the presigned PUT target and the public
// URL to reference from the message once the upload completes.
type PresignUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	FileURL   string            `json:"file_url"`
}
