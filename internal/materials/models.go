package materials

import "time"

// Material is a study resource attached to a session, either an uploaded
// file (file_key) or an external link
type Material struct {
	ID         int64     `json:"material_id"`
	SessionID  int64     `json:"session_id"`
	TutorEmail string    `json:"tutor_email"`
	Title      string    `json:"title"`
	FileKey    string    `json:"file_key,omitempty"`
	Link       string    `json:"link,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// DownloadURL is populated on reads for file-backed materials
	DownloadURL string `json:"download_url,omitempty"`
}

// UploadURLRequest asks for a presigned upload slot
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// UploadURLResponse carries the presigned URL and the key to register
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileKey   string `json:"file_key"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreateMaterialRequest registers material metadata for a session. Exactly
// one of FileKey or Link must be set.
type CreateMaterialRequest struct {
	Title   string `json:"title" binding:"required"`
	FileKey string `json:"file_key"`
	Link    string `json:"link"`
}

const (
	maxFilenameLength = 255
	uploadTTL         = 15 * time.Minute
	downloadTTL       = 1 * time.Hour
)

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
	"video/mp4":       true,
	"audio/mpeg":      true,
}
