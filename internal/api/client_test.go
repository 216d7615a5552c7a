package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/record"
	"github.com/pointzapp/bhakti-console/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New()
	sess.SetTokens("test-token", "test-refresh")
	return New(srv.URL, srv.Client(), sess, nil), sess
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	body := map[string]any{"data": data, "message": message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestListDecodesEnvelopeAndPagination(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mantras/", r.URL.Path)
		assert.Equal(t, "gayatri", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"_id": "m1", "title": "Gayatri"}},
			"meta": map[string]any{"pagination": map[string]int{
				"total": 41, "page": 2, "limit": 20, "totalPages": 3,
			}},
		})
	}))

	items, page, err := c.Mantras().List(context.Background(), record.ListParams{Search: "gayatri", Page: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, 41, page.Total)
	assert.True(t, page.HasMore())
}

func TestReadRetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]string{"_id": "m1"}, "")
	}))

	m, err := c.Mantras().Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReadGivesUpAfterSecondFailure(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, nil, "database unavailable")
	}))

	_, err := c.Mantras().Get(context.Background(), "m1")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "database unavailable", UserMessage(err, "fallback"))
}

func TestMutationNeverRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Mantras().Create(context.Background(), record.MantraPayload{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthRejectionBroadcastsLogout(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
	}))

	loggedOut := false
	sess.OnLogout(func() { loggedOut = true })

	_, err := c.Stories().Get(context.Background(), "s1")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.AuthFailure())
	assert.True(t, loggedOut)
	assert.False(t, sess.Authenticated())
}

func TestLoginArmsSession(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin@pointz.app", creds.Email)
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "fresh-access",
			"refreshToken": "fresh-refresh",
			"user":         map[string]string{"_id": "u1", "email": creds.Email},
		}, "")
	}))
	sess.Logout()

	user, err := c.Login(context.Background(), Credentials{Email: "admin@pointz.app", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "fresh-access", sess.AccessToken())
	assert.True(t, sess.Authenticated())
}

func stageUploadFile(t *testing.T, name string, content []byte) *media.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	f, err := media.StageFile(path)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func TestUploadSendsOneMultipartRequest(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/media/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		photos := r.MultipartForm.File["photos"]
		require.Len(t, photos, 2)
		assert.Equal(t, "first.jpg", photos[0].Filename)
		assert.Equal(t, "second.jpg", photos[1].Filename)
		assert.Equal(t, "image/jpeg", photos[0].Header.Get("Content-Type"))

		require.Len(t, r.MultipartForm.File["audio"], 1)
		assert.Empty(t, r.MultipartForm.File["video"])

		writeEnvelope(w, http.StatusOK, map[string]any{
			"photos": []string{"images/k0", "images/k1"},
			"audio":  "audios/k2",
		}, "")
	}))

	req := media.UploadRequest{
		Photos: []*media.File{
			stageUploadFile(t, "first.jpg", jpeg),
			stageUploadFile(t, "second.jpg", jpeg),
		},
		Audio: stageUploadFile(t, "chant.mp3", []byte("ID3\x03audio-bytes")),
	}
	result, err := c.Upload(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []media.Key{"images/k0", "images/k1"}, result.Photos)
	assert.Equal(t, media.Key("audios/k2"), result.Audio)
}

func TestUploadRejectsOverLimitBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
	req := media.UploadRequest{}
	for i := 0; i <= media.MaxGalleryPhotos; i++ {
		req.Photos = append(req.Photos, stageUploadFile(t, "p.jpg", jpeg))
	}

	_, err := c.Upload(context.Background(), req)
	var tooMany *media.TooManyPhotosError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, int32(0), calls.Load())
}

func TestUserMessageFallsBackWithoutServerMessage(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(assert.AnError, "fallback"))
	assert.Equal(t, "fallback", UserMessage(&Error{Status: 500}, "fallback"))
	assert.Equal(t, "taken", UserMessage(&Error{Status: 409, Message: "taken"}, "fallback"))
}
