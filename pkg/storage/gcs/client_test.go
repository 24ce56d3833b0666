package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenSource(token string) *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return token, time.Now().Add(time.Hour), nil
	}}
}

func TestUploadSuccess(t *testing.T) {
	t.Parallel()

	var gotBody string
	client := &Client{
		defaultBucket: "automarkt-media",
		tokenSource:   staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodPost {
				t.Fatalf("expected POST, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if req.Header.Get("Content-Type") != "image/jpeg" {
				t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
			}
			if !strings.Contains(req.URL.RawQuery, "uploadType=media") {
				t.Fatalf("expected media upload, got %s", req.URL.RawQuery)
			}
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"name":"car-images/abc.jpg"}`)),
				Header:     http.Header{},
			}
		})},
	}

	url, err := client.Upload(context.Background(), "car-images/abc.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotBody != "jpeg-bytes" {
		t.Fatalf("body not forwarded, got %q", gotBody)
	}
	if url != "https://storage.googleapis.com/automarkt-media/car-images/abc.jpg" {
		t.Fatalf("unexpected public url %s", url)
	}
}

func TestUploadServerError(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "automarkt-media",
		tokenSource:   staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusForbidden,
				Status:     "403 Forbidden",
				Body:       io.NopCloser(strings.NewReader(`{"error":"denied"}`)),
				Header:     http.Header{},
			}
		})},
	}

	if _, err := client.Upload(context.Background(), "car-images/abc.jpg", "image/jpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestUploadRequiresKey(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "automarkt-media", tokenSource: staticTokenSource("token")}
	if _, err := client.Upload(context.Background(), "", "image/jpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for missing key")
	}

	empty := &Client{}
	if _, err := empty.Upload(context.Background(), "k", "image/jpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
}

func TestDeleteSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "automarkt-media",
		tokenSource:   staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodDelete {
				t.Fatalf("expected DELETE, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "car-images/abc.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "automarkt-media",
		tokenSource:   staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "car-images/gone.jpg"); err != nil {
		t.Fatalf("Delete of missing object should succeed: %v", err)
	}
}

func TestObjectKeyAndURL(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "automarkt-media", keyPrefix: "car-images"}
	if got := client.ObjectKey("abc.jpg"); got != "car-images/abc.jpg" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := client.ObjectKey("/abc.jpg"); got != "car-images/abc.jpg" {
		t.Fatalf("unexpected key %s", got)
	}

	bare := &Client{defaultBucket: "automarkt-media"}
	if got := bare.ObjectKey("abc.jpg"); got != "abc.jpg" {
		t.Fatalf("unexpected key without prefix %s", got)
	}

	if got := client.ObjectURL("car-images/abc.jpg"); got != "https://storage.googleapis.com/automarkt-media/car-images/abc.jpg" {
		t.Fatalf("unexpected url %s", got)
	}
}
