package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A minimal JPEG header is enough for content sniffing.
var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func TestUploadToPresignedURL(t *testing.T) {
	ctx := context.Background()

	t.Run("success 200 OK", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		require.NoError(t, UploadToPresignedURL(ctx, ts.Client(), ts.URL+"/photos/u1/a?X-Amz-Signature=abc", jpeg))
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "image/jpeg", gotCT)
		assert.Equal(t, jpeg, gotBody)
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("SignatureDoesNotMatch"))
		}))
		defer ts.Close()

		err := UploadToPresignedURL(ctx, ts.Client(), ts.URL, jpeg)
		require.ErrorContains(t, err, "upload failed: 403")
		require.ErrorContains(t, err, "SignatureDoesNotMatch")
	})

	t.Run("too large", func(t *testing.T) {
		err := UploadToPresignedURL(ctx, http.DefaultClient, "http://127.0.0.1:1", make([]byte, MaxPhotoSize+1))
		require.ErrorContains(t, err, "limit")
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		require.Error(t, UploadToPresignedURL(ctx, http.DefaultClient, ts.URL, jpeg))
	})
}

func TestDownloadFromPresignedURL(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(jpeg)
	}))
	defer ts.Close()

	data, err := DownloadFromPresignedURL(ctx, ts.Client(), ts.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, jpeg, data)

	_, err = DownloadFromPresignedURL(ctx, ts.Client(), ts.URL+"/missing")
	require.ErrorContains(t, err, "404")
}
