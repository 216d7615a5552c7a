package record

import "github.com/pointzapp/bhakti-console/internal/media"

// MantraPayload is the create/update request body for a mantra. Photos and
// audio carry the final storage keys produced by reconciliation.
type MantraPayload struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        string      `json:"tags"`
	Photos      []media.Key `json:"photos"`
	Audio       media.Key   `json:"audio"`
}

// StoryPayload is the create/update request body for a story. Exactly one of
// Audio and Video must be set; the empty one is omitted from the JSON body.
type StoryPayload struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    Category    `json:"category"`
	Tags        string      `json:"tags"`
	TitlePhoto  media.Key   `json:"titlePhoto"`
	Photos      []media.Key `json:"photos"`
	Audio       media.Key   `json:"audio,omitempty"`
	Video       media.Key   `json:"video,omitempty"`
}

// MantraDraft holds the user-entered form fields of a mantra dialog. Media
// lives in the dialog's PendingEdit, not here.
type MantraDraft struct {
	Title       string `validate:"required,min=3,max=100"`
	Description string `validate:"required,min=10,max=500"`
	Tags        string `validate:"required,max=200,taglist"`
}

// StoryDraft holds the user-entered form fields of a story dialog.
type StoryDraft struct {
	Title       string     `validate:"required,min=3,max=100"`
	Description string     `validate:"required,min=10,max=500"`
	Category    Category   `validate:"required,oneof=mythology festival epic devotional puranas"`
	Tags        string     `validate:"required,max=200,taglist"`
	Mode        media.Mode `validate:"required,oneof=audio video"`
}

// Payload combines the draft fields with reconciled media keys.
func (d MantraDraft) Payload(m media.RecordMedia) MantraPayload {
	photos := m.Photos
	if photos == nil {
		photos = []media.Key{}
	}
	return MantraPayload{
		Title:       d.Title,
		Description: d.Description,
		Tags:        ParseTags(d.Tags).String(),
		Photos:      photos,
		Audio:       m.Audio,
	}
}

// Payload combines the draft fields with reconciled media keys.
func (d StoryDraft) Payload(m media.RecordMedia) StoryPayload {
	photos := m.Photos
	if photos == nil {
		photos = []media.Key{}
	}
	return StoryPayload{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        ParseTags(d.Tags).String(),
		TitlePhoto:  m.TitlePhoto,
		Photos:      photos,
		Audio:       m.Audio,
		Video:       m.Video,
	}
}
