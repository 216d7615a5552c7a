package api

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

	"github.com/pointzapp/bhakti-console/internal/media"
)

const uploadPath = "/media/"

// Upload sends every staged file in one multipart request and returns the
// storage keys the gateway assigned. Requests over the gallery limit fail
// before any bytes hit the network; empty requests are a caller bug.
func (c *Client) Upload(ctx context.Context, req media.UploadRequest) (media.UploadResult, error) {
	if req.IsZero() {
		return media.UploadResult{}, fmt.Errorf("upload: no files staged")
	}
	if len(req.Photos) > media.MaxGalleryPhotos {
		return media.UploadResult{}, &media.TooManyPhotosError{Staged: len(req.Photos)}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, photo := range req.Photos {
		if err := writeFilePart(mw, "photos", photo); err != nil {
			return media.UploadResult{}, err
		}
	}
	if req.Audio != nil {
		if err := writeFilePart(mw, "audio", req.Audio); err != nil {
			return media.UploadResult{}, err
		}
	}
	if req.Video != nil {
		if err := writeFilePart(mw, "video", req.Video); err != nil {
			return media.UploadResult{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return media.UploadResult{}, fmt.Errorf("upload: finalize body: %w", err)
	}

	// Uploads are mutations: one attempt, no retry.
	env, err := c.do(ctx, http.MethodPost, uploadPath, nil, &buf, mw.FormDataContentType(), false)
	if err != nil {
		return media.UploadResult{}, err
	}

	var result media.UploadResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return media.UploadResult{}, fmt.Errorf("upload: decode response: %w", err)
		}
	}
	return result, nil
}

func writeFilePart(mw *multipart.Writer, field string, f *media.File) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("upload %s: %w", field, err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf("form-data; name=%q; filename=%q",
		field, escapeQuotes(f.Name)))
	contentType := f.Mime
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("upload %s: %w", field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("upload %s %q: %w", field, f.Name, err)
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
