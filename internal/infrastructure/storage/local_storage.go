package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/upload"
)

// LocalStorage keeps media objects on the local filesystem. Intended for
// development and tests, not production.
type LocalStorage struct {
	basePath string
	log      zerolog.Logger
}

func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		return nil, fmt.Errorf("MEDIA_LOCAL_STORAGE_PATH is required for the local backend")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("local storage initialized")
	return &LocalStorage{basePath: basePath, log: logger}, nil
}

// UploadBatch writes each file of the batch to disk.
func (l *LocalStorage) UploadBatch(ctx context.Context, files []upload.FileUpload) ([]upload.StoredObject, error) {
	stored := make([]upload.StoredObject, 0, len(files))
	for i := range files {
		key := uuid.NewString() + strings.ToLower(path.Ext(files[i].Name))
		if err := os.WriteFile(filepath.Join(l.basePath, key), files[i].Content, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", files[i].Name, err)
		}
		stored = append(stored, upload.StoredObject{
			Key:          key,
			OriginalName: files[i].Name,
			Size:         int64(len(files[i].Content)),
			MimeType:     files[i].MimeType,
		})
	}
	return stored, nil
}

// List walks the storage directory.
func (l *LocalStorage) List(ctx context.Context) ([]upload.ObjectInfo, error) {
	var objects []upload.ObjectInfo
	err := filepath.WalkDir(l.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.basePath, p)
		if err != nil {
			return err
		}
		objects = append(objects, upload.ObjectInfo{
			Key:  filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list local storage: %w", err)
	}
	return objects, nil
}

// Exists checks whether the object's file is on disk.
func (l *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.basePath, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the object's file. Deleting a missing file is not an error.
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(l.basePath, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Health checks that the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}
