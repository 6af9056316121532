// Package upload moves batches of local files into the remote object store.
package upload

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// FileUpload is one local file queued for transfer.
type FileUpload struct {
	Name     string
	MimeType string
	Content  []byte
}

// StoredObject is the object store's record of one transferred file. Main is
// set on the first successfully stored object of a run; the UI treats it as
// the listing's primary image.
type StoredObject struct {
	Key          string `json:"key"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	Main         bool   `json:"main"`
}

// ObjectInfo describes one object returned by a storage listing.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ObjectStore is the remote store the orchestrator feeds. UploadBatch
// transfers all files of one batch in a single request where the backend
// supports it.
type ObjectStore interface {
	UploadBatch(ctx context.Context, files []FileUpload) ([]StoredObject, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

// Progress reports per-file completion, successful or not.
type Progress func(done, total int)

// Result aggregates a run's stored objects in arrival order together with
// the error strings of failed batches. Partial success is the norm: for 1:1
// file-to-key uploads, len(Stored) + per-file error count equals the input
// file count.
type Result struct {
	Stored []StoredObject `json:"stored"`
	Errors []string       `json:"errors,omitempty"`
}

// Orchestrator splits inputs into fixed-size batches and uploads them
// strictly sequentially to respect the store's per-request ceiling.
type Orchestrator struct {
	store     ObjectStore
	batchSize int
	maxBytes  int64
	log       zerolog.Logger
}

func NewOrchestrator(cfg *config.Config, store ObjectStore, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		batchSize: cfg.UploadBatchSize,
		maxBytes:  cfg.MaxUploadBytes,
		log:       log.With().Str("component", "upload-orchestrator").Logger(),
	}
}

// Upload transfers the files and reports progress. A failed batch
// contributes one error string per file it carried and does not abort the
// remaining batches.
func (o *Orchestrator) Upload(ctx context.Context, files []FileUpload, progress Progress) (*Result, error) {
	if len(files) == 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"no files to upload",
			nil,
			"5c2e8a4f-7d1b-4f9e-a6c3-0b8d5f2a7e9c",
		)
	}
	for i := range files {
		if int64(len(files[i].Content)) > o.maxBytes {
			return nil, platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation,
				"file exceeds upload size limit",
				nil,
				"0d7b3f9e-4a2c-4d8f-b1e6-9c5a0f3d7b2e",
				map[string]any{"file": files[i].Name, "max_bytes": o.maxBytes},
			)
		}
		if files[i].MimeType == "" {
			files[i].MimeType = mimetype.Detect(files[i].Content).String()
		}
	}

	result := &Result{}
	total := len(files)
	done := 0

	for start := 0; start < total; start += o.batchSize {
		end := start + o.batchSize
		if end > total {
			end = total
		}
		batch := files[start:end]

		stored, err := o.store.UploadBatch(ctx, batch)
		if err != nil {
			o.log.Warn().Err(err).Int("batch_start", start).Int("batch_len", len(batch)).Msg("batch upload failed")
			for i := range batch {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", batch[i].Name, err))
			}
		} else {
			result.Stored = append(result.Stored, stored...)
		}

		done += len(batch)
		if progress != nil {
			progress(done, total)
		}
	}

	if len(result.Stored) > 0 {
		result.Stored[0].Main = true
	}
	return result, nil
}
