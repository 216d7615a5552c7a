// Package media models storage keys, staged local files, and the
// reconciliation of a record's media references across create and edit flows.
package media

import "strings"

// Kind classifies a media attachment.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Key is an opaque storage-object identifier as returned by the upload
// endpoint, e.g. "images/<uuid>" or "audios/<uuid>.mp3". It is never a full
// URL; rendering happens through URLResolver at display time only.
type Key string

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return strings.TrimSpace(string(k)) == ""
}

// Mode is the declared media mode of a Story: an audio story carries a title
// photo plus a gallery, a video story carries the video alone.
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// RecordMedia is the final set of media references to persist on a record.
// Unused slots stay zero: a Mantra has no TitlePhoto or Video, a video Story
// has no Audio and an empty gallery.
type RecordMedia struct {
	TitlePhoto Key
	Photos     []Key
	Audio      Key
	Video      Key
}
