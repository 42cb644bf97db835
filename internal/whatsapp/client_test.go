package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendText(t *testing.T) {
	t.Parallel()
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, "token-1", "phone-9")
	require.NoError(t, c.SendText(context.Background(), "15550001111", "hello"))

	assert.Equal(t, "/phone-9/messages", gotPath)
	assert.Equal(t, "whatsapp", gotPayload["messaging_product"])
	assert.Equal(t, "15550001111", gotPayload["to"])
	assert.Equal(t, map[string]any{"body": "hello"}, gotPayload["text"])
}

func TestClient_SendTextErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid recipient"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, "t", "p")
	err := c.SendText(context.Background(), "bad", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestClient_MarkRead(t *testing.T) {
	t.Parallel()
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, "t", "p")
	require.NoError(t, c.MarkRead(context.Background(), "wamid.in"))
	assert.Equal(t, "read", gotPayload["status"])
	assert.Equal(t, "wamid.in", gotPayload["message_id"])
}

func TestClient_DownloadMedia(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/media-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"url":       srv.URL + "/cdn/blob",
			"mime_type": "image/png",
			"sha256":    "abc",
		})
	})
	mux.HandleFunc("/cdn/blob", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		w.Write([]byte("image-bytes"))
	})

	c := NewClient(nil, srv.URL, "t", "p")
	data, mimeType, meta, err := c.DownloadMedia(context.Background(), "media-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, "abc", meta["sha256"])
}

func TestClient_DownloadMediaNoURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"mime_type": "image/png"})
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, "t", "p")
	_, _, _, err := c.DownloadMedia(context.Background(), "media-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no url")
}

func TestMessage_MediaRef(t *testing.T) {
	t.Parallel()
	img := &Media{ID: "i"}
	assert.Equal(t, img, Message{Type: "image", Image: img}.MediaRef())
	assert.Equal(t, img, Message{Type: "document", Document: img}.MediaRef())
	assert.Nil(t, Message{Type: "text"}.MediaRef())
	assert.Nil(t, Message{Type: "sticker"}.MediaRef())
}
