package mutate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointzapp/bhakti-console/internal/api"
	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/record"
	"github.com/pointzapp/bhakti-console/internal/session"
)

type testNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *testNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *testNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

type fixture struct {
	mutator *Mutator
	cache   *query.Cache
	notify  *testNotifier
	states  *[]State
}

func newFixture(t *testing.T, handler http.Handler) fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.New()
	sess.SetTokens("test-token", "")
	client := api.New(srv.URL, srv.Client(), sess, nil)

	cache := query.NewCache()
	notify := &testNotifier{}
	var states []State
	var mu sync.Mutex
	mutator := New(client, cache, notify, nil, WithStateFunc(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}))
	return fixture{mutator: mutator, cache: cache, notify: notify, states: &states}
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "message": message})
}

func stageFile(t *testing.T, name string, content []byte) *media.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	f, err := media.StageFile(path)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func stagePhoto(t *testing.T, name string) *media.File {
	return stageFile(t, name, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
}

func mantraDraft() record.MantraDraft {
	return record.MantraDraft{
		Title:       "Gayatri Mantra",
		Description: "A sacred chant recited at dawn and dusk.",
		Tags:        "vedic, dawn",
	}
}

func storyDraft(mode media.Mode) record.StoryDraft {
	return record.StoryDraft{
		Title:       "The Churning of the Ocean",
		Description: "Devas and asuras churn the cosmic ocean together.",
		Category:    record.CategoryMythology,
		Tags:        "samudra, manthan",
		Mode:        mode,
	}
}

func TestSubmitMantraUploadsThenPersistsMergedKeys(t *testing.T) {
	var persisted record.MantraPayload
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Len(t, r.MultipartForm.File["photos"], 2)
			respond(w, http.StatusOK, map[string]any{
				"photos": []string{"images/new1", "images/new2"},
			}, "")
		case "/mantras/m1":
			require.Equal(t, http.MethodPut, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&persisted))
			respond(w, http.StatusOK, map[string]string{"_id": "m1"}, "")
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/kept"}
	edit.Audio.Existing = []media.Key{"audios/kept.mp3"}
	edit.Photos.Stage(stagePhoto(t, "a.jpg"), stagePhoto(t, "b.jpg"))

	saved, err := f.mutator.SubmitMantra(context.Background(), "m1", mantraDraft(), edit)
	require.NoError(t, err)
	assert.Equal(t, "m1", saved.ID)

	// Existing keys first, uploaded keys appended in selection order.
	assert.Equal(t, []media.Key{"images/kept", "images/new1", "images/new2"}, persisted.Photos)
	assert.Equal(t, media.Key("audios/kept.mp3"), persisted.Audio)
	assert.Equal(t, "vedic,dawn", persisted.Tags)

	assert.Equal(t, []string{"Mantra saved"}, f.notify.successes)
	assert.Empty(t, f.notify.errors)
	assert.Equal(t,
		[]State{StateReconciling, StateUploading, StatePersisting, StateSettled, StateIdle},
		*f.states)
}

func TestSubmitMantraSkipsUploadWithoutNewFiles(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/media/" {
			t.Error("upload gateway called without staged files")
		}
		respond(w, http.StatusOK, map[string]string{"_id": "m1"}, "")
	}))

	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/kept"}
	edit.Audio.Existing = []media.Key{"audios/kept.mp3"}

	_, err := f.mutator.SubmitMantra(context.Background(), "m1", mantraDraft(), edit)
	require.NoError(t, err)
	assert.NotContains(t, *f.states, StateUploading)
}

func TestSubmitMantraValidationFailsWithoutNetworkOrToast(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))

	draft := mantraDraft()
	draft.Title = "Om"
	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/kept"}
	edit.Audio.Existing = []media.Key{"audios/kept.mp3"}

	_, err := f.mutator.SubmitMantra(context.Background(), "m1", draft, edit)
	var fieldErrs record.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "title")

	// Validation errors render inline in the dialog, never as a toast.
	assert.Empty(t, f.notify.successes)
	assert.Empty(t, f.notify.errors)
}

func TestUploadFailureKeepsEditAndSkipsPersist(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/" {
			t.Errorf("persist reached after failed upload: %s", r.URL.Path)
			return
		}
		respond(w, http.StatusInternalServerError, nil, "storage unavailable")
	}))

	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/kept"}
	edit.Audio.Existing = []media.Key{"audios/kept.mp3"}
	edit.Photos.Stage(stagePhoto(t, "a.jpg"))

	_, err := f.mutator.SubmitMantra(context.Background(), "m1", mantraDraft(), edit)
	require.Error(t, err)

	assert.Equal(t, []string{"storage unavailable"}, f.notify.errors)
	assert.True(t, edit.HasNewFiles(), "staged files must survive a failed submit")
	assert.Equal(t, StateIdle, f.mutator.State())
}

func TestPersistFailureShowsServerMessage(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusConflict, nil, "a mantra with this title already exists")
	}))

	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/kept"}
	edit.Audio.Existing = []media.Key{"audios/kept.mp3"}

	_, err := f.mutator.SubmitMantra(context.Background(), "m1", mantraDraft(), edit)
	require.Error(t, err)
	assert.Equal(t, []string{"a mantra with this title already exists"}, f.notify.errors)
}

func TestConcurrentSubmitRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		respond(w, http.StatusOK, map[string]string{"_id": "m1"}, "")
	}))

	edit := media.NewPendingEdit(media.ModeAudio)
	edit.Photos.Existing = []media.Key{"images/kept"}
	edit.Audio.Existing = []media.Key{"audios/kept.mp3"}

	done := make(chan error, 1)
	go func() {
		_, err := f.mutator.SubmitMantra(context.Background(), "m1", mantraDraft(), edit)
		done <- err
	}()

	<-started
	_, err := f.mutator.SubmitMantra(context.Background(), "m1", mantraDraft(), edit)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestSubmitStoryVideoModeClearsAudioReferences(t *testing.T) {
	var persisted record.StoryPayload
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/":
			respond(w, http.StatusOK, map[string]any{"video": "videos/new.mp4"}, "")
		case "/stories/s1":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&persisted))
			respond(w, http.StatusOK, map[string]string{"_id": "s1"}, "")
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))

	// An audio story switched to video: retained audio and gallery are cleared.
	edit := media.SeedPendingEdit(media.RecordMedia{
		TitlePhoto: "images/title",
		Photos:     []media.Key{"images/a", "images/b"},
		Audio:      "audios/old.mp3",
	})
	edit.SwitchMode(media.ModeVideo)
	edit.Video.Stage(stageFile(t, "v.mp4", append([]byte("\x00\x00\x00\x18ftypmp42"), make([]byte, 32)...)))

	_, err := f.mutator.SubmitStory(context.Background(), "s1", storyDraft(media.ModeVideo), edit)
	require.NoError(t, err)

	assert.Equal(t, media.Key("videos/new.mp4"), persisted.Video)
	assert.Empty(t, persisted.Audio)
	assert.Empty(t, persisted.Photos)
	assert.Equal(t, media.Key("images/title"), persisted.TitlePhoto)
}

func TestDeleteInvalidatesCachedReads(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		respond(w, http.StatusOK, nil, "")
	}))

	_, err := query.Through(context.Background(), f.cache, query.ListKey("mantras", "k", 1),
		func(context.Context) (string, error) { return "page", nil })
	require.NoError(t, err)

	require.NoError(t, f.mutator.DeleteMantra(context.Background(), "m1"))
	assert.Equal(t, 0, f.cache.Len())
	assert.Equal(t, []string{"Mantra deleted"}, f.notify.successes)
}
