package media

import "time"

// Variant identifies one rendition of an asset group.
type Variant string

const (
	VariantSource    Variant = "source"
	VariantThumbnail Variant = "thumbnail"
	VariantDisplay   Variant = "display"
	VariantVideo     Variant = "video"
)

// PublishStatus tracks the asynchronous variant generation progress of a file.
// The external publish worker advances pending -> processing -> published or
// failed; this service only ever writes the initial pending state.
type PublishStatus string

const (
	PublishPending    PublishStatus = "pending"
	PublishProcessing PublishStatus = "processing"
	Published         PublishStatus = "published"
	PublishFailed     PublishStatus = "failed"
)

// IsTerminal reports whether the worker is done with this file.
func (s PublishStatus) IsTerminal() bool {
	return s == Published || s == PublishFailed
}

// MediaFile represents one physical variant of an uploaded asset. Rows
// sharing an AssetGroupID are variants of one logical upload; exactly one
// row per group has Variant == source.
type MediaFile struct {
	ID            string         `json:"id"`
	ItemID        *string        `json:"item_id,omitempty"`
	AssetGroupID  string         `json:"asset_group_id"`
	Variant       Variant        `json:"variant"`
	SourceKey     *string        `json:"source_key,omitempty"`
	ProcessedKey  *string        `json:"processed_key,omitempty"`
	CDNUrl        *string        `json:"cdn_url,omitempty"`
	OriginalName  string         `json:"original_name"`
	SizeBytes     *int64         `json:"size_bytes,omitempty"`
	MimeType      *string        `json:"mime_type,omitempty"`
	Width         *int           `json:"width,omitempty"`
	Height        *int           `json:"height,omitempty"`
	DurationSecs  *float64       `json:"duration_secs,omitempty"`
	PublishStatus PublishStatus  `json:"publish_status"`
	// Priority is copied into the publish job row by the metadata store's
	// insert trigger; higher values are processed first.
	Priority     int        `json:"priority"`
	UploadSource string     `json:"upload_source"`
	DetachedAt   *time.Time `json:"detached_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsDetached reports whether the row has been soft-deleted.
func (f *MediaFile) IsDetached() bool {
	return f.DetachedAt != nil
}

// PurgeDue reports whether a detached row has outlived the grace window and
// may be physically removed.
func (f *MediaFile) PurgeDue(grace time.Duration, now time.Time) bool {
	if f.DetachedAt == nil {
		return false
	}
	return now.Sub(*f.DetachedAt) >= grace
}

// AttachInput carries the parameters for attaching an uploaded storage key
// to a new asset group.
type AttachInput struct {
	StorageKey   string
	OriginalName string
	MimeType     *string
	SizeBytes    *int64
	ItemID       *string
	Priority     int
}

// PurgeStats summarizes one purge sweep over detached groups.
type PurgeStats struct {
	RowsDeleted    int      `json:"rows_deleted"`
	ObjectsDeleted int      `json:"objects_deleted"`
	Failures       []string `json:"failures,omitempty"`
}
