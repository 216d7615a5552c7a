// Package record defines the Mantra and Story content records, their wire
// representations, and the form validation applied before a mutation runs.
package record

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pointzapp/bhakti-console/internal/media"
)

// Status is the publication state of a record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Category classifies a Story.
type Category string

const (
	CategoryMythology  Category = "mythology"
	CategoryFestival   Category = "festival"
	CategoryEpic       Category = "epic"
	CategoryDevotional Category = "devotional"
	CategoryPuranas    Category = "puranas"
)

// Categories lists every valid story category, in display order.
var Categories = []Category{
	CategoryMythology,
	CategoryFestival,
	CategoryEpic,
	CategoryDevotional,
	CategoryPuranas,
}

// TagList is a set of tags serialized as one comma-joined string on the wire.
// The server is inconsistent on reads (some endpoints return an array), so
// unmarshalling accepts both forms.
type TagList []string

// MarshalJSON joins the tags with commas, the format mutations must send.
func (t TagList) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.Join(t, ","))
}

// UnmarshalJSON accepts either a comma-joined string or a string array.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*t = ParseTags(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

// String returns the comma-joined wire form.
func (t TagList) String() string {
	return strings.Join(t, ",")
}

// ParseTags splits a comma-joined tag string, trimming each segment and
// dropping empty ones.
func ParseTags(joined string) TagList {
	parts := strings.Split(joined, ",")
	tags := make(TagList, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// Mantra is a chant record: a photo gallery plus a single audio track.
type Mantra struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        TagList     `json:"tags"`
	Photos      []media.Key `json:"photos"`
	Audio       media.Key   `json:"audio"`
	PlayCount   int         `json:"playCount"`
	Status      Status      `json:"status"`
	IsDeleted   bool        `json:"isDeleted"`
	CreatedBy   string      `json:"createdBy"`
	UpdatedBy   string      `json:"updatedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Media returns the record's persisted media references.
func (m Mantra) Media() media.RecordMedia {
	return media.RecordMedia{
		Photos: append([]media.Key(nil), m.Photos...),
		Audio:  m.Audio,
	}
}

// Story is a narrated record: either an audio story (title photo + gallery +
// audio) or a video story (title photo + video, empty gallery). Exactly one
// of Audio and Video is set on a persisted story, never both, never neither.
type Story struct {
	ID           string      `json:"_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Category     Category    `json:"category"`
	Tags         TagList     `json:"tags"`
	TitlePhoto   media.Key   `json:"titlePhoto"`
	Photos       []media.Key `json:"photos"`
	Audio        media.Key   `json:"audio,omitempty"`
	Video        media.Key   `json:"video,omitempty"`
	ListensCount int         `json:"listensCount"`
	Status       Status      `json:"status"`
	IsDeleted    bool        `json:"isDeleted"`
	CreatedBy    string      `json:"createdBy"`
	UpdatedBy    string      `json:"updatedBy"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Media returns the record's persisted media references.
func (s Story) Media() media.RecordMedia {
	return media.RecordMedia{
		TitlePhoto: s.TitlePhoto,
		Photos:     append([]media.Key(nil), s.Photos...),
		Audio:      s.Audio,
		Video:      s.Video,
	}
}

// Mode returns the story's media mode as implied by its persisted media.
func (s Story) Mode() media.Mode {
	if !s.Video.IsZero() && s.Audio.IsZero() {
		return media.ModeVideo
	}
	return media.ModeAudio
}

// Pagination is the page-number based paging block every list response carries.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// HasMore reports whether another page exists after the current one.
func (p Pagination) HasMore() bool {
	return p.Page < p.TotalPages
}

// ListParams are the filter/sort/paging query parameters of the list
// endpoints. Zero values are omitted from the query string.
type ListParams struct {
	Search    string
	Status    Status
	Category  Category
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Query encodes the parameters for the list request.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Category != "" {
		q.Set("category", string(p.Category))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		q.Set("sortOrder", p.SortOrder)
	}
	return q
}

// WithPage returns a copy of the params pointing at the given page.
func (p ListParams) WithPage(page int) ListParams {
	p.Page = page
	return p
}

// CacheKey returns a stable string identifying this filter combination,
// excluding the page, for list cache keying.
func (p ListParams) CacheKey() string {
	filters := p
	filters.Page = 0
	return filters.Query().Encode()
}
