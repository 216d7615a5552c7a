package media

import (
	"errors"
	"fmt"
)

// MaxGalleryPhotos caps a record's gallery, counting retained and new photos
// together. The form layer rejects over-limit input first; the reconciler
// re-checks so a misbehaving caller still cannot reach the upload gateway.
const MaxGalleryPhotos = 10

// ErrNoUploadResult is returned by Merge when the plan required an upload but
// the result does not carry the keys the plan expected.
var ErrNoUploadResult = errors.New("upload result does not match plan")

// TooManyPhotosError reports an over-limit gallery before any upload happens.
type TooManyPhotosError struct {
	Retained int
	Staged   int
}

func (e *TooManyPhotosError) Error() string {
	return fmt.Sprintf("you can upload up to %d photos total: %d retained and %d new selected",
		MaxGalleryPhotos, e.Retained, e.Staged)
}

// UploadRequest bundles the staged files for one upload gateway call. Only
// slots with new files are populated; absent slots are omitted from the
// multipart payload so unrelated media is untouched server-side.
type UploadRequest struct {
	Photos []*File
	Audio  *File
	Video  *File
}

// IsZero reports whether the request carries no files at all.
func (r UploadRequest) IsZero() bool {
	return len(r.Photos) == 0 && r.Audio == nil && r.Video == nil
}

// UploadResult mirrors the request shape with the storage keys the gateway
// assigned. Photos are positional: when the request combined a title photo
// with gallery photos, index 0 is the title photo.
type UploadResult struct {
	Photos []Key `json:"photos"`
	Audio  Key   `json:"audio"`
	Video  Key   `json:"video"`
}

// Plan is the reconciliation decision for one submit: whether an upload call
// is needed, what to send, and how to merge the returned keys with the keys
// the user retained. It is a pure function of the PendingEdit it was computed
// from; computing it does not consume or mutate the edit.
type Plan struct {
	NeedsUpload bool
	Upload      UploadRequest

	mode         Mode
	titleFirst   bool
	newGallery   int
	hasNewTitle  bool
	hasNewAudio  bool
	hasNewVideo  bool
	keptTitle    Key
	keptPhotos   []Key
	keptAudio    Key
	keptVideo    Key
}

// ComputePlan reconciles the pending edit into an upload request and merge
// strategy. In video mode the gallery is forced empty: no gallery photos are
// uploaded and retained ones are cleared at merge time, taking precedence
// over anything the user left in the slot.
func ComputePlan(p *PendingEdit) (Plan, error) {
	plan := Plan{
		mode:       p.Mode,
		keptTitle:  p.TitlePhoto.FirstExisting(),
		keptPhotos: append([]Key(nil), p.Photos.Existing...),
		keptAudio:  p.Audio.FirstExisting(),
		keptVideo:  p.Video.FirstExisting(),
	}

	galleryOpen := p.Mode != ModeVideo
	if galleryOpen {
		if total := len(p.Photos.Existing) + len(p.Photos.New); total > MaxGalleryPhotos {
			return Plan{}, &TooManyPhotosError{
				Retained: len(p.Photos.Existing),
				Staged:   len(p.Photos.New),
			}
		}
	}

	// Title photo and gallery share one ordered upload list, title first.
	// The split on merge is positional only when the title photo is new.
	if p.TitlePhoto.HasNew() {
		plan.hasNewTitle = true
		plan.titleFirst = true
		plan.Upload.Photos = append(plan.Upload.Photos, p.TitlePhoto.New[0])
	}
	if galleryOpen && p.Photos.HasNew() {
		plan.newGallery = len(p.Photos.New)
		plan.Upload.Photos = append(plan.Upload.Photos, p.Photos.New...)
	}
	if galleryOpen && p.Audio.HasNew() {
		plan.hasNewAudio = true
		plan.Upload.Audio = p.Audio.New[0]
	}
	if p.Mode == ModeVideo && p.Video.HasNew() {
		plan.hasNewVideo = true
		plan.Upload.Video = p.Video.New[0]
	}

	plan.NeedsUpload = !plan.Upload.IsZero()
	return plan, nil
}

// Merge combines the gateway's keys with the retained existing keys into the
// final reference set. When the plan needed no upload, pass a zero
// UploadResult: the final set is the retained keys with mode-switch clearing
// applied.
func (pl Plan) Merge(res UploadResult) (RecordMedia, error) {
	if pl.NeedsUpload {
		if want := len(pl.Upload.Photos); len(res.Photos) != want {
			return RecordMedia{}, fmt.Errorf("%w: got %d photo keys, want %d", ErrNoUploadResult, len(res.Photos), want)
		}
		if pl.hasNewAudio && res.Audio.IsZero() {
			return RecordMedia{}, fmt.Errorf("%w: audio key missing", ErrNoUploadResult)
		}
		if pl.hasNewVideo && res.Video.IsZero() {
			return RecordMedia{}, fmt.Errorf("%w: video key missing", ErrNoUploadResult)
		}
	}

	final := RecordMedia{
		TitlePhoto: pl.keptTitle,
		Photos:     append([]Key(nil), pl.keptPhotos...),
		Audio:      pl.keptAudio,
		Video:      pl.keptVideo,
	}

	uploaded := res.Photos
	if pl.titleFirst {
		final.TitlePhoto = uploaded[0]
		uploaded = uploaded[1:]
	}
	if pl.newGallery > 0 {
		// Existing order is preserved, new keys append in upload order.
		final.Photos = append(final.Photos, uploaded...)
	}
	if pl.hasNewAudio {
		final.Audio = res.Audio
	}
	if pl.hasNewVideo {
		final.Video = res.Video
	}

	// Mode-switch clearing wins over retained keys for the opposite slot.
	switch pl.mode {
	case ModeAudio:
		final.Video = ""
	case ModeVideo:
		final.Audio = ""
		final.Photos = nil
	}

	return final, nil
}
