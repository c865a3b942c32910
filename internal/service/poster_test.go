package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinerag/internal/utils"
)

func TestPosterResolver(t *testing.T) {
	pages := map[string]string{
		"/og":      `<html><head><meta property="og:image" content="/img/og.jpg"></head><body><img src="/img/body.jpg"></body></html>`,
		"/twitter": `<html><head><meta name="twitter:image" content="https://cdn.example.com/t.jpg"></head></html>`,
		"/img":     `<html><body><img src="posters/first.png"><img src="second.png"></body></html>`,
		"/none":    `<html><body><p>no images</p></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	ctx := context.Background()
	resolver := NewPosterResolver(5*time.Second, true)

	got, err := resolver.Resolve(ctx, srv.URL+"/og")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/img/og.jpg", got)

	got, err = resolver.Resolve(ctx, srv.URL+"/twitter")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/t.jpg", got)

	got, err = resolver.Resolve(ctx, srv.URL+"/img")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/posters/first.png", got)

	_, err = resolver.Resolve(ctx, srv.URL+"/none")
	assert.ErrorIs(t, err, ErrPosterNotFound)

	_, err = resolver.Resolve(ctx, srv.URL+"/missing")
	assert.Error(t, err)

	_, err = resolver.Resolve(ctx, "not-a-url")
	assert.Error(t, err)

	_, err = resolver.Resolve(ctx, "file:///etc/passwd")
	assert.Error(t, err)
}

func TestPosterResolver_RejectsPrivateHosts(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		_, _ = w.Write([]byte(`<meta property="og:image" content="/secret.jpg">`))
	}))
	defer srv.Close()

	resolver := NewPosterResolver(time.Second, false)
	for _, target := range []string{srv.URL + "/og", "http://169.254.169.254/latest/meta-data/", "http://[::1]:1/"} {
		_, err := resolver.Resolve(context.Background(), target)
		assert.ErrorIs(t, err, utils.ErrPrivateAddress, target)
	}
	assert.False(t, hit)
}
