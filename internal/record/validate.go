package record

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pointzapp/bhakti-console/internal/media"
)

// FieldErrors maps a form field to its validation message. It satisfies the
// error interface so a failed validation can flow through error returns while
// the dialog renders messages next to the offending fields.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// taglist: every comma-separated segment must be non-empty after trimming.
	_ = v.RegisterValidation("taglist", func(fl validator.FieldLevel) bool {
		for _, seg := range strings.Split(fl.Field().String(), ",") {
			if strings.TrimSpace(seg) == "" {
				return false
			}
		}
		return true
	})
	return v
}

// Normalize trims the free-text fields, mirroring what the form does before
// validating.
func (d *MantraDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Tags = strings.TrimSpace(d.Tags)
}

// Normalize trims the free-text fields.
func (d *StoryDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Tags = strings.TrimSpace(d.Tags)
}

// Validate checks the draft fields and the dialog's media state. In create
// mode media is required; in edit mode empty slots mean "keep existing".
func (d MantraDraft) Validate(edit *media.PendingEdit, create bool) error {
	errs := fieldErrorsFor(validate.Struct(d))

	photoCount := len(edit.Photos.Existing) + len(edit.Photos.New)
	if create && photoCount == 0 {
		errs.set("photos", "at least one photo is required")
	}
	if photoCount > media.MaxGalleryPhotos {
		errs.setGalleryLimit(len(edit.Photos.Existing), len(edit.Photos.New))
	}
	if create && !edit.Audio.HasNew() {
		errs.set("audio", "an audio file is required")
	}
	errs.checkKinds(edit)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the draft fields and the dialog's media state against the
// story invariants: a title photo always, audio mode needs an audio track and
// a non-empty gallery, video mode needs a video and forbids gallery photos.
func (d StoryDraft) Validate(edit *media.PendingEdit, create bool) error {
	errs := fieldErrorsFor(validate.Struct(d))

	titleCount := len(edit.TitlePhoto.Existing) + len(edit.TitlePhoto.New)
	if create && titleCount == 0 {
		errs.set("titlePhoto", "a title photo is required")
	}

	photoCount := len(edit.Photos.Existing) + len(edit.Photos.New)
	switch d.Mode {
	case media.ModeAudio:
		if create && !edit.Audio.HasNew() {
			errs.set("audio", "an audio file is required when audio is selected")
		}
		if create && photoCount == 0 {
			errs.set("photos", "at least one photo is required when audio is selected")
		}
		if photoCount > media.MaxGalleryPhotos {
			errs.setGalleryLimit(len(edit.Photos.Existing), len(edit.Photos.New))
		}
	case media.ModeVideo:
		if create && !edit.Video.HasNew() {
			errs.set("video", "a video file is required when video is selected")
		}
		if edit.Photos.HasNew() {
			errs.set("photos", "photos must be empty when video is selected")
		}
	}
	errs.checkKinds(edit)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateStoryMedia checks the reconciled reference set a story mutation is
// about to persist: exactly one of audio and video, video implies an empty
// gallery, audio implies a title photo and a non-empty gallery.
func ValidateStoryMedia(m media.RecordMedia) error {
	errs := FieldErrors{}
	switch {
	case !m.Audio.IsZero() && !m.Video.IsZero():
		errs.set("audio", "a story cannot carry both audio and video")
	case m.Audio.IsZero() && m.Video.IsZero():
		errs.set("audio", "a story needs either audio or video")
	case !m.Video.IsZero():
		if len(m.Photos) > 0 {
			errs.set("photos", "photos must be empty when video is present")
		}
	default:
		if m.TitlePhoto.IsZero() {
			errs.set("titlePhoto", "a title photo is required when audio is present")
		}
		if len(m.Photos) == 0 {
			errs.set("photos", "at least one photo is required when audio is present")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (e FieldErrors) set(field, msg string) {
	if _, taken := e[field]; !taken {
		e[field] = msg
	}
}

func (e FieldErrors) setGalleryLimit(retained, staged int) {
	e.set("photos", (&media.TooManyPhotosError{
		Retained: retained,
		Staged:   staged,
	}).Error())
}

// checkKinds verifies staged files match their slot: photos and title photo
// must be images, the audio slot an audio file, the video slot a video file.
func (e FieldErrors) checkKinds(edit *media.PendingEdit) {
	for _, f := range edit.TitlePhoto.New {
		if f.Kind != media.KindImage {
			e.set("titlePhoto", "title photo must be a valid image file")
		}
	}
	for _, f := range edit.Photos.New {
		if f.Kind != media.KindImage {
			e.set("photos", "photos must be valid image files")
		}
	}
	for _, f := range edit.Audio.New {
		if f.Kind != media.KindAudio {
			e.set("audio", "audio must be a valid audio file")
		}
	}
	for _, f := range edit.Video.New {
		if f.Kind != media.KindVideo {
			e.set("video", "video must be a valid video file")
		}
	}
}

// fieldErrorsFor converts validator output into field-keyed messages.
func fieldErrorsFor(err error) FieldErrors {
	errs := FieldErrors{}
	if err == nil {
		return errs
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.set("form", err.Error())
		return errs
	}
	for _, fe := range invalid {
		field := fieldName(fe.Field())
		errs.set(field, messageFor(field, fe))
	}
	return errs
}

func fieldName(structField string) string {
	if structField == "" {
		return "form"
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must not exceed " + fe.Param() + " characters"
	case "oneof":
		return "please select a valid " + field
	case "taglist":
		return "tags must be comma-separated and non-empty"
	default:
		return field + " is invalid"
	}
}
