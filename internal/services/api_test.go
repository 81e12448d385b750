package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/nowplaying/internal/shared"
	tu "github.com/desertthunder/nowplaying/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://localhost:8000" {
				t.Errorf("expected default baseURL 'http://localhost:8000', got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET, got %s", r.Method)
				}
				if r.URL.Path != "/requests" {
					t.Errorf("expected /requests, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"requests": 4}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, server.Client()).Get(context.Background(), "/requests")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("expected OK JSON response, got %+v", resp)
			}
			if resp.Headers.Get("Content-Type") != "application/json" {
				t.Errorf("expected content type header, got %s", resp.Headers.Get("Content-Type"))
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("bad gateway\n"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, server.Client()).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() || resp.IsJSON {
				t.Errorf("expected non-OK plain response, got %+v", resp)
			}
			if resp.Detail() != "bad gateway" {
				t.Errorf("expected trimmed body as detail, got %q", resp.Detail())
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("expected transport error, got %v", err)
			}
		})

		t.Run("Body Read Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     make(http.Header),
			}, nil)}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})
	})

	t.Run("NowPlaying", func(t *testing.T) {
		t.Run("Playing", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/spotify_api/now_playing" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				io.WriteString(w, `{"is_playing":true,"title":"Song","artist":"A, B","album":"Album","album_cover":"c","song_url":"u","duration":"03:05","current":"00:30","progress":16.2}`)
			}))
			defer server.Close()

			snap, err := NewAPIService(server.URL, server.Client()).NowPlaying(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !snap.IsPlaying || snap.Title != "Song" || snap.Duration != "03:05" {
				t.Errorf("unexpected snapshot %+v", snap)
			}
		})

		t.Run("Not Playing", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"is_playing":false}`)
			}))
			defer server.Close()

			snap, err := NewAPIService(server.URL, server.Client()).NowPlaying(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap.IsPlaying {
				t.Error("expected not playing")
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, `{"detail":"spotify api returned a non-OK status code"}`)
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, server.Client()).NowPlaying(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "non-OK status code") {
				t.Errorf("expected server detail in error, got %v", err)
			}
		})
	})

	t.Run("AuthorizeURL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("token") != "s3cret&x" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"detail":"unauthorized"}`)
				return
			}
			io.WriteString(w, `{"url":"https://accounts.spotify.com/authorize?client_id=abc"}`)
		}))
		defer server.Close()
		api := NewAPIService(server.URL, server.Client())

		t.Run("Escapes And Returns URL", func(t *testing.T) {
			got, err := api.AuthorizeURL(context.Background(), "s3cret&x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "https://accounts.spotify.com/authorize?client_id=abc" {
				t.Errorf("unexpected url %s", got)
			}
		})

		t.Run("Wrong Token", func(t *testing.T) {
			_, err := api.AuthorizeURL(context.Background(), "nope")
			if !errors.Is(err, shared.ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	})

	t.Run("Requests", func(t *testing.T) {
		t.Run("Decodes Count", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"requests": 42}`)
			}))
			defer server.Close()

			n, err := NewAPIService(server.URL, server.Client()).Requests(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n != 42 {
				t.Errorf("expected 42, got %d", n)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			if _, err := NewAPIService(server.URL, server.Client()).Requests(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}
