package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *ObjectStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return NewObjectStore(client, "chatbot-evaluations")
}

func TestPutJSON(t *testing.T) {
	var gotPath, gotType, gotBody string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			w.Header().Set("ETag", `"abc"`)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := store.PutJSON(context.Background(), "evaluations/1.json", map[string]float64{"answer_similarity": 0.9})
	require.NoError(t, err)
	assert.Equal(t, "/chatbot-evaluations/evaluations/1.json", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Contains(t, gotBody, `"answer_similarity": 0.9`)
}

func TestReadObject(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Header().Set("ETag", `"abc"`)
		_, _ = w.Write([]byte("Para cancelar tu suscripción..."))
	})

	data, err := store.ReadObject(context.Background(), "docs/faq.txt")
	require.NoError(t, err)
	assert.Equal(t, "Para cancelar tu suscripción...", string(data))
}
