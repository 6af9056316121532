package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/upload"
	"github.com/heavybid/auction-media/internal/infrastructure/metrics"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

const userIDHeader = "X-User-Id"

// DriveStorage talks to the remote object store's HTTP API. Batches go out
// as one multipart request each; keys come back in arrival order.
type DriveStorage struct {
	endpoint string
	userID   string
	client   *http.Client
	log      zerolog.Logger
}

func NewDriveStorage(cfg *config.Config, log zerolog.Logger) *DriveStorage {
	return &DriveStorage{
		endpoint: cfg.DriveEndpoint,
		userID:   cfg.DriveUserID,
		client:   &http.Client{Timeout: cfg.DriveTimeout},
		log:      log.With().Str("component", "drive-storage").Logger(),
	}
}

type driveUploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

type driveUploadResponse struct {
	Success bool                `json:"success"`
	Files   []driveUploadedFile `json:"files"`
	Error   string              `json:"error,omitempty"`
}

// UploadBatch sends all files of one batch in a single multipart request.
func (d *DriveStorage) UploadBatch(ctx context.Context, files []upload.FileUpload) ([]upload.StoredObject, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(files[i].Name)))
		header.Set("Content-Type", files[i].MimeType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeInternal, "failed to build multipart body", err,
				"e2a7c4f9-1d8b-4e6a-b3c5-9f0d7a2e4c8b")
		}
		if _, err := part.Write(files[i].Content); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeInternal, "failed to write multipart body", err,
				"b8d5f2a7-3c9e-4a1d-8e6b-0c4f9d7b2a5e")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "failed to finalize multipart body", err,
			"7f1c9e4b-6a3d-4d8f-a2b0-5e8c1f6d9b3a")
	}

	var parsed driveUploadResponse
	timer := metrics.StorageTimer("upload")
	err := d.postJSON(ctx, "/upload", writer.FormDataContentType(), body, &parsed)
	timer(err)
	if err != nil {
		return nil, err
	}
	if !parsed.Success {
		message := parsed.Error
		if message == "" {
			message = "upload rejected"
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, message, nil,
			"4c8a2d6f-9b5e-4f3a-b7d1-2e9c4a8f6d0b")
	}

	stored := make([]upload.StoredObject, 0, len(parsed.Files))
	for _, f := range parsed.Files {
		stored = append(stored, upload.StoredObject{
			Key:          f.Filename,
			OriginalName: f.OriginalName,
			Size:         f.Size,
			MimeType:     f.MimeType,
		})
	}
	return stored, nil
}

type driveListResponse struct {
	Files []struct {
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	} `json:"files"`
}

// List returns every object in this user's storage prefix.
func (d *DriveStorage) List(ctx context.Context) ([]upload.ObjectInfo, error) {
	var parsed driveListResponse
	timer := metrics.StorageTimer("list")
	err := d.postJSON(ctx, "/list-files", "application/json", strings.NewReader("{}"), &parsed)
	timer(err)
	if err != nil {
		return nil, err
	}
	objects := make([]upload.ObjectInfo, 0, len(parsed.Files))
	for _, f := range parsed.Files {
		objects = append(objects, upload.ObjectInfo{Key: f.Filename, Size: f.Size})
	}
	return objects, nil
}

// Exists probes one object with a HEAD request.
func (d *DriveStorage) Exists(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.fileURL(key), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set(userIDHeader, d.userID)

	timer := metrics.StorageTimer("head")
	resp, err := d.client.Do(req)
	timer(err)
	if err != nil {
		return false, d.networkError(ctx, "existence probe failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, d.upstreamError(ctx, resp, "existence probe rejected")
	}
}

// Delete removes one object.
func (d *DriveStorage) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, d.fileURL(key), nil)
	if err != nil {
		return err
	}
	req.Header.Set(userIDHeader, d.userID)

	timer := metrics.StorageTimer("delete")
	resp, err := d.client.Do(req)
	timer(err)
	if err != nil {
		return d.networkError(ctx, "delete request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return d.upstreamError(ctx, resp, "delete rejected")
	}
	return nil
}

type driveHealthResponse struct {
	Status       string `json:"status"`
	Provider     string `json:"provider"`
	DownloadBase string `json:"download_base"`
}

// Health checks the store's health endpoint.
func (d *DriveStorage) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return d.networkError(ctx, "health check failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return d.upstreamError(ctx, resp, "health check rejected")
	}
	var parsed driveHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return d.upstreamError(ctx, resp, "health response malformed")
	}
	if parsed.Status != "ok" && parsed.Status != "healthy" {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "object store unhealthy", nil,
			"9e3b7d1f-5c8a-4a2e-b6f0-4d7c9e1a3b5f",
			map[string]any{"status": parsed.Status, "provider": parsed.Provider})
	}
	return nil
}

func (d *DriveStorage) postJSON(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userIDHeader, d.userID)

	resp, err := d.client.Do(req)
	if err != nil {
		return d.networkError(ctx, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return d.upstreamError(ctx, resp, "request rejected")
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "response body malformed", err,
			"6a9d4f2b-8c1e-4b7a-9d3f-0e5b8a2c6f4d")
	}
	return nil
}

func (d *DriveStorage) fileURL(key string) string {
	return fmt.Sprintf("%s/files/%s/%s", d.endpoint, d.userID, key)
}

func (d *DriveStorage) networkError(ctx context.Context, message string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeExternal, message, err,
		"2f6c8a4d-7e1b-4d9f-a5c3-8b0e2d6f4a9c")
}

func (d *DriveStorage) upstreamError(ctx context.Context, resp *http.Response, message string) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeExternal, message, nil,
		"d4b8f1e6-3a7c-4c2d-8f9b-5e0a7c3d1f8b",
		map[string]any{"status": resp.StatusCode, "body": strings.TrimSpace(string(snippet))})
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
