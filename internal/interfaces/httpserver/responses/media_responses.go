package responses

import (
	"time"

	"github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/domain/upload"
)

// MediaFileResponse is the wire form of one media file variant.
type MediaFileResponse struct {
	ID            string     `json:"id"`
	ItemID        *string    `json:"item_id,omitempty"`
	AssetGroupID  string     `json:"asset_group_id"`
	Variant       string     `json:"variant"`
	CDNUrl        *string    `json:"cdn_url,omitempty"`
	OriginalName  string     `json:"original_name"`
	SizeBytes     *int64     `json:"size_bytes,omitempty"`
	MimeType      *string    `json:"mime_type,omitempty"`
	Width         *int       `json:"width,omitempty"`
	Height        *int       `json:"height,omitempty"`
	PublishStatus string     `json:"publish_status"`
	DetachedAt    *time.Time `json:"detached_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BuildMediaFileResponse creates a response from a domain file
func BuildMediaFileResponse(f *media.MediaFile) MediaFileResponse {
	return MediaFileResponse{
		ID:            f.ID,
		ItemID:        f.ItemID,
		AssetGroupID:  f.AssetGroupID,
		Variant:       string(f.Variant),
		CDNUrl:        f.CDNUrl,
		OriginalName:  f.OriginalName,
		SizeBytes:     f.SizeBytes,
		MimeType:      f.MimeType,
		Width:         f.Width,
		Height:        f.Height,
		PublishStatus: string(f.PublishStatus),
		DetachedAt:    f.DetachedAt,
		CreatedAt:     f.CreatedAt,
	}
}

// BuildMediaFileList maps a slice of domain files
func BuildMediaFileList(files []media.MediaFile) []MediaFileResponse {
	out := make([]MediaFileResponse, 0, len(files))
	for i := range files {
		out = append(out, BuildMediaFileResponse(&files[i]))
	}
	return out
}

// AttachResponse returns the created source file and its publish job.
type AttachResponse struct {
	File MediaFileResponse `json:"file"`
	Job  JobResponse       `json:"job"`
}

// UploadResponse reports one upload run. Stored objects arrive in upload
// order; errors carry one entry per failed file.
type UploadResponse struct {
	Stored []upload.StoredObject `json:"stored"`
	Errors []string              `json:"errors,omitempty"`
}

// BuildUploadResponse creates a response from an orchestrator result
func BuildUploadResponse(result *upload.Result) UploadResponse {
	return UploadResponse{Stored: result.Stored, Errors: result.Errors}
}

// JobResponse is the wire form of one publish job.
type JobResponse struct {
	ID           int64      `json:"id"`
	FileID       string     `json:"file_id"`
	AssetGroupID string     `json:"asset_group_id"`
	Status       string     `json:"status"`
	Priority     int        `json:"priority"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BuildJobResponse creates a response from a domain job
func BuildJobResponse(j *publish.Job) JobResponse {
	return JobResponse{
		ID:           j.ID,
		FileID:       j.FileID,
		AssetGroupID: j.AssetGroupID,
		Status:       string(j.Status),
		Priority:     j.Priority,
		RetryCount:   j.RetryCount,
		MaxRetries:   j.MaxRetries,
		ErrorMessage: j.ErrorMessage,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
		CreatedAt:    j.CreatedAt,
	}
}

// BuildJobList maps a slice of domain jobs
func BuildJobList(jobs []publish.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, BuildJobResponse(&jobs[i]))
	}
	return out
}
