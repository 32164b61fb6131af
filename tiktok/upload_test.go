package tiktok

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempVideo(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadFile(t *testing.T) {
	t.Run("sends one PUT with exact range headers", func(t *testing.T) {
		const size = 1000
		path := writeTempVideo(t, size)

		var gotMethod, gotRange, gotType string
		var gotLength int64
		var gotBody []byte
		server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotRange = r.Header.Get("Content-Range")
			gotType = r.Header.Get("Content-Type")
			gotLength = r.ContentLength
			gotBody, _ = io.ReadAll(r.Body)
		}))

		session := &PublishSession{PublishID: "pub1", UploadURL: server.baseURL + "/upload"}
		err := server.UploadFile(context.Background(), FileSource{Path: path}, session)
		assert.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "bytes 0-999/1000", gotRange)
		assert.Equal(t, "video/mp4", gotType)
		assert.EqualValues(t, size, gotLength)
		assert.Len(t, gotBody, size)
	})

	t.Run("rejects a zero-byte file before any network call", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.mp4")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		var calls int32
		server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))

		session := &PublishSession{PublishID: "pub1", UploadURL: server.baseURL + "/upload"}
		err := server.UploadFile(context.Background(), FileSource{Path: path}, session)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("a non-2xx response surfaces as an UploadError", func(t *testing.T) {
		path := writeTempVideo(t, 10)
		server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, "url expired")
		}))

		session := &PublishSession{PublishID: "pub1", UploadURL: server.baseURL + "/upload"}
		err := server.UploadFile(context.Background(), FileSource{Path: path}, session)
		var uploadErr *UploadError
		assert.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, http.StatusForbidden, uploadErr.StatusCode)
		assert.Equal(t, "url expired", uploadErr.Body)
	})

	t.Run("a session without an upload URL is rejected", func(t *testing.T) {
		path := writeTempVideo(t, 10)
		client := newTestClient(t, http.NotFoundHandler())

		err := client.UploadFile(context.Background(), FileSource{Path: path}, &PublishSession{PublishID: "pub1"})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("an explicit mime type wins over detection", func(t *testing.T) {
		path := writeTempVideo(t, 10)
		var gotType string
		server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotType = r.Header.Get("Content-Type")
		}))

		session := &PublishSession{PublishID: "pub1", UploadURL: server.baseURL + "/upload"}
		err := server.UploadFile(context.Background(), FileSource{Path: path, MimeType: "video/webm"}, session)
		assert.NoError(t, err)
		assert.Equal(t, "video/webm", gotType)
	})
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "video/mp4", DetectMimeType("a/b/clip.mp4"))
	assert.Equal(t, "video/quicktime", DetectMimeType("clip.MOV"))
	assert.Equal(t, "video/webm", DetectMimeType("clip.webm"))
	assert.Equal(t, "video/mp4", DetectMimeType("clip.mystery"))
}
