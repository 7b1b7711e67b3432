package posts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPosts(t *testing.T) {
	srv := newPostsServer(t, http.StatusOK, `[
		{"userId": 1, "id": 1, "title": "first", "body": "alpha"},
		{"userId": 1, "id": 2, "title": "second", "body": "beta"},
		{"userId": 2, "id": 3, "title": "third", "body": "gamma"}
	]`)

	client := NewClient(srv.URL)
	got, err := client.FetchPosts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Post{UserID: 1, ID: 1, Title: "first", Body: "alpha"}, got[0])
}

func TestFetchPosts_Limit(t *testing.T) {
	srv := newPostsServer(t, http.StatusOK, `[
		{"userId": 1, "id": 1, "title": "first", "body": "alpha"},
		{"userId": 1, "id": 2, "title": "second", "body": "beta"},
		{"userId": 2, "id": 3, "title": "third", "body": "gamma"}
	]`)

	client := NewClient(srv.URL)
	got, err := client.FetchPosts(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// A limit larger than the result set is not an error.
	got, err = client.FetchPosts(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFetchPosts_ServerError(t *testing.T) {
	srv := newPostsServer(t, http.StatusInternalServerError, "boom")

	client := NewClient(srv.URL)
	_, err := client.FetchPosts(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestFetchPosts_MalformedBody(t *testing.T) {
	srv := newPostsServer(t, http.StatusOK, `{"not": "a list"}`)

	client := NewClient(srv.URL)
	_, err := client.FetchPosts(context.Background(), 0)
	require.Error(t, err)
}

func TestFetchPosts_CancelledContext(t *testing.T) {
	srv := newPostsServer(t, http.StatusOK, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL)
	_, err := client.FetchPosts(ctx, 0)
	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").baseURL)
	assert.Equal(t, "http://example.com", NewClient("http://example.com/").baseURL)
}

func TestPostValidate(t *testing.T) {
	cases := []struct {
		name string
		post Post
		want bool
	}{
		{"complete", Post{ID: 1, Title: "t", Body: "b"}, true},
		{"missing id", Post{Title: "t", Body: "b"}, false},
		{"blank title", Post{ID: 1, Title: "   ", Body: "b"}, false},
		{"blank body", Post{ID: 1, Title: "t", Body: ""}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.post.Validate())
		})
	}
}

func TestPostFormatContent(t *testing.T) {
	p := Post{ID: 1, Title: "  Hello  ", Body: "World\nagain "}
	assert.Equal(t, "Title: Hello\n\nWorld\nagain\n", p.FormatContent())
}
