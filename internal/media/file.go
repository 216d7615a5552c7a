package media

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// File is a locally staged media file selected for upload but not yet sent.
// Staging opens the file and keeps the handle as the preview resource; the
// handle must be released when the file is superseded or the dialog closes.
type File struct {
	Name string
	Kind Kind
	Mime string
	Size int64

	handle *os.File
}

// StageFile opens and classifies a local file for upload. The MIME type is
// sniffed from the leading bytes, falling back to the filename extension.
func StageFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stage media file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stage media file: %w", err)
	}

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && n == 0 {
		f.Close()
		return nil, fmt.Errorf("stage media file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("stage media file: %w", err)
	}

	mime := sniffMime(header[:n], path)
	return &File{
		Name:   filepath.Base(path),
		Kind:   kindFromMime(mime),
		Mime:   mime,
		Size:   info.Size(),
		handle: f,
	}, nil
}

// Open returns the staged file positioned at the start for upload.
func (f *File) Open() (*os.File, error) {
	if f.handle == nil {
		return nil, fmt.Errorf("media file %q already released", f.Name)
	}
	if _, err := f.handle.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewind media file %q: %w", f.Name, err)
	}
	return f.handle, nil
}

// Release closes the preview handle. Safe to call more than once.
func (f *File) Release() {
	if f == nil || f.handle == nil {
		return
	}
	_ = f.handle.Close()
	f.handle = nil
}

func sniffMime(header []byte, path string) string {
	mime := ""
	if len(header) > 0 {
		mime = http.DetectContentType(header)
	}
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	// DetectContentType cannot tell mp3 and some containers apart; the
	// extension is more specific than application/octet-stream.
	if mime == "" || mime == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".mp3":
			mime = "audio/mpeg"
		case ".wav":
			mime = "audio/wav"
		case ".mp4":
			mime = "video/mp4"
		case ".webm":
			mime = "video/webm"
		case ".jpg", ".jpeg":
			mime = "image/jpeg"
		case ".png":
			mime = "image/png"
		case ".webp":
			mime = "image/webp"
		default:
			mime = "application/octet-stream"
		}
	}
	return mime
}

func kindFromMime(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	default:
		return ""
	}
}
