package record

import (
	"encoding/json"
	"testing"

	"github.com/pointzapp/bhakti-console/internal/media"
)

func TestTagListWireFormat(t *testing.T) {
	t.Run("marshal joins with commas", func(t *testing.T) {
		out, err := json.Marshal(TagList{"Rama", "Dharma", "Epic"})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != `"Rama,Dharma,Epic"` {
			t.Fatalf("marshalled tags = %s", out)
		}
	})

	t.Run("unmarshal accepts joined string", func(t *testing.T) {
		var tags TagList
		if err := json.Unmarshal([]byte(`"Rama, Dharma"`), &tags); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(tags) != 2 || tags[0] != "Rama" || tags[1] != "Dharma" {
			t.Fatalf("tags = %v", tags)
		}
	})

	t.Run("unmarshal accepts array", func(t *testing.T) {
		var tags TagList
		if err := json.Unmarshal([]byte(`["Rama","Dharma"]`), &tags); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(tags) != 2 {
			t.Fatalf("tags = %v", tags)
		}
	})
}

func TestParseTagsDropsEmptySegments(t *testing.T) {
	tags := ParseTags(" Rama , , Dharma,")
	if len(tags) != 2 || tags[0] != "Rama" || tags[1] != "Dharma" {
		t.Fatalf("tags = %v", tags)
	}
	if ParseTags("  ,  ") != nil {
		t.Fatal("all-empty input should parse to nil")
	}
}

func TestPaginationHasMore(t *testing.T) {
	if !(Pagination{Page: 1, TotalPages: 3}).HasMore() {
		t.Fatal("page 1 of 3 has more")
	}
	if (Pagination{Page: 3, TotalPages: 3}).HasMore() {
		t.Fatal("last page has no more")
	}
}

func TestListParamsQueryOmitsZeroValues(t *testing.T) {
	q := ListParams{Search: "rama", Page: 2, Limit: 20, SortBy: "createdAt", SortOrder: "desc"}.Query()
	if q.Get("search") != "rama" || q.Get("page") != "2" || q.Get("limit") != "20" {
		t.Fatalf("query = %v", q)
	}
	if q.Has("status") || q.Has("category") {
		t.Fatalf("zero-valued filters leaked into query: %v", q)
	}
}

func TestListParamsCacheKeyIgnoresPage(t *testing.T) {
	base := ListParams{Search: "rama", Status: StatusActive, Limit: 20}
	if base.WithPage(1).CacheKey() != base.WithPage(7).CacheKey() {
		t.Fatal("cache key must not vary by page")
	}
	other := base
	other.Search = "krishna"
	if base.CacheKey() == other.CacheKey() {
		t.Fatal("different filters must produce different cache keys")
	}
}

func TestStoryModeFromPersistedMedia(t *testing.T) {
	if (Story{Audio: "audios/a.mp3"}).Mode() != media.ModeAudio {
		t.Fatal("audio story reports audio mode")
	}
	if (Story{Video: "videos/v.mp4"}).Mode() != media.ModeVideo {
		t.Fatal("video story reports video mode")
	}
}

func validMantraDraft() MantraDraft {
	return MantraDraft{
		Title:       "Gayatri Mantra",
		Description: "A sacred chant recited at dawn and dusk.",
		Tags:        "vedic, dawn",
	}
}

func validStoryDraft(mode media.Mode) StoryDraft {
	return StoryDraft{
		Title:       "The Churning of the Ocean",
		Description: "Devas and asuras churn the cosmic ocean together.",
		Category:    CategoryMythology,
		Tags:        "samudra, manthan",
		Mode:        mode,
	}
}

func TestMantraDraftFieldValidation(t *testing.T) {
	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/a"}
	edit.Audio.Existing = []media.Key{"audios/a.mp3"}

	cases := []struct {
		name   string
		mutate func(*MantraDraft)
		field  string
	}{
		{name: "short title", mutate: func(d *MantraDraft) { d.Title = "Om" }, field: "title"},
		{name: "long title", mutate: func(d *MantraDraft) { d.Title = string(make([]byte, 101)) }, field: "title"},
		{name: "short description", mutate: func(d *MantraDraft) { d.Description = "too short" }, field: "description"},
		{name: "empty tags", mutate: func(d *MantraDraft) { d.Tags = "" }, field: "tags"},
		{name: "empty tag segment", mutate: func(d *MantraDraft) { d.Tags = "rama,,dharma" }, field: "tags"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validMantraDraft()
			tc.mutate(&draft)
			draft.Normalize()
			err := draft.Validate(edit, false)
			fieldErrs, ok := err.(FieldErrors)
			if !ok {
				t.Fatalf("err = %v, want FieldErrors", err)
			}
			if _, present := fieldErrs[tc.field]; !present {
				t.Fatalf("expected error on %q, got %v", tc.field, fieldErrs)
			}
		})
	}
}

func TestMantraDraftCreateRequiresMedia(t *testing.T) {
	draft := validMantraDraft()
	err := draft.Validate(media.NewPendingEdit(media.ModeAudio), true)
	fieldErrs, ok := err.(FieldErrors)
	if !ok {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	if _, present := fieldErrs["photos"]; !present {
		t.Fatalf("create without photos must fail: %v", fieldErrs)
	}
	if _, present := fieldErrs["audio"]; !present {
		t.Fatalf("create without audio must fail: %v", fieldErrs)
	}
}

func TestMantraDraftEditAllowsOmittedMedia(t *testing.T) {
	draft := validMantraDraft()
	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/a"}
	edit.Audio.Existing = []media.Key{"audios/a.mp3"}
	if err := draft.Validate(edit, false); err != nil {
		t.Fatalf("edit with retained media should validate: %v", err)
	}
}

func TestStoryDraftVideoModeForbidsNewPhotos(t *testing.T) {
	draft := validStoryDraft(media.ModeVideo)
	edit := media.NewPendingEdit(media.ModeVideo)
	edit.Video.Existing = []media.Key{"videos/v.mp4"}
	edit.TitlePhoto.Existing = []media.Key{"images/t"}
	// Bypass SwitchMode's own clearing to simulate a misbehaving caller.
	edit.Photos.New = []*media.File{{Name: "p.jpg", Kind: media.KindImage}}

	err := draft.Validate(edit, false)
	fieldErrs, ok := err.(FieldErrors)
	if !ok {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	if _, present := fieldErrs["photos"]; !present {
		t.Fatalf("expected photos error, got %v", fieldErrs)
	}
}

func TestStoryDraftCreateAudioModeRequirements(t *testing.T) {
	draft := validStoryDraft(media.ModeAudio)
	err := draft.Validate(media.NewPendingEdit(media.ModeAudio), true)
	fieldErrs, ok := err.(FieldErrors)
	if !ok {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	for _, field := range []string{"titlePhoto", "photos", "audio"} {
		if _, present := fieldErrs[field]; !present {
			t.Fatalf("expected error on %q, got %v", field, fieldErrs)
		}
	}
}

func TestValidateStoryMediaInvariants(t *testing.T) {
	cases := []struct {
		name string
		m    media.RecordMedia
		ok   bool
	}{
		{
			name: "audio story",
			m:    media.RecordMedia{TitlePhoto: "images/t", Photos: []media.Key{"images/a"}, Audio: "audios/a.mp3"},
			ok:   true,
		},
		{
			name: "video story",
			m:    media.RecordMedia{TitlePhoto: "images/t", Video: "videos/v.mp4"},
			ok:   true,
		},
		{name: "both set", m: media.RecordMedia{Audio: "a", Video: "v"}},
		{name: "neither set", m: media.RecordMedia{TitlePhoto: "images/t"}},
		{name: "video with photos", m: media.RecordMedia{Video: "v", Photos: []media.Key{"images/a"}}},
		{name: "audio without title photo", m: media.RecordMedia{Audio: "a", Photos: []media.Key{"images/a"}}},
		{name: "audio without photos", m: media.RecordMedia{TitlePhoto: "images/t", Audio: "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStoryMedia(tc.m)
			if tc.ok && err != nil {
				t.Fatalf("valid media rejected: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("invalid media accepted")
			}
		})
	}
}

func TestDraftPayloadSerializesTags(t *testing.T) {
	draft := validMantraDraft()
	payload := draft.Payload(media.RecordMedia{Photos: []media.Key{"images/a"}, Audio: "audios/a.mp3"})
	if payload.Tags != "vedic,dawn" {
		t.Fatalf("tags = %q, want normalized comma-joined string", payload.Tags)
	}

	out, err := json.Marshal(draft.Payload(media.RecordMedia{Audio: "audios/a.mp3"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// A nil gallery must serialize as [] so the server clears the slot.
	if string(out) == "" || !json.Valid(out) {
		t.Fatalf("payload json invalid: %s", out)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, isArray := decoded["photos"].([]any); !isArray {
		t.Fatalf("photos = %v, want JSON array", decoded["photos"])
	}
}
