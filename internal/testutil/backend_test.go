package testutil

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_UnroutedIs404(t *testing.T) {
	b := NewBackend(t)

	resp, err := http.Get(b.URL + "/nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"not found"}`, string(body))
	assert.Equal(t, 1, b.Count(http.MethodGet, "/nowhere"))
}

func TestBackend_ReplyAndRecord(t *testing.T) {
	b := NewBackend(t)
	b.ReplyJSON(http.MethodPost, "/api/checkout", http.StatusOK, map[string]string{"orderCode": "ESPR-AB12CD"})

	resp, err := http.Post(b.URL+"/api/checkout", "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"orderCode":"ESPR-AB12CD"}`, string(body))

	last, ok := b.Last(http.MethodPost, "/api/checkout")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(last.Body))
	assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
}

func TestBackend_HandlerSeesBody(t *testing.T) {
	b := NewBackend(t)
	var got string
	b.HandleFunc(http.MethodPost, "/echo", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got = string(data)
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := http.Post(b.URL+"/echo", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "hello", got)
}
