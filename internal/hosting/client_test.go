package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFetchAllPages_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Token"); got != "secret" {
			t.Errorf("X-API-Token = %q, want secret", got)
		}
		fmt.Fprint(w, `[{"file_code":"only","title":"Only One.mkv"}]`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	videos, err := client.FetchAllPages(context.Background(), server.URL, "secret", 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 1 || videos[0].VideoID() != "only" {
		t.Fatalf("unexpected videos: %+v", videos)
	}
}

func TestFetchAllPages_ExhaustsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		fmt.Fprintf(w, `{"data":[{"file_code":"p%s"}],"total_pages":4}`, page)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	videos, err := client.FetchAllPages(context.Background(), server.URL, "", 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID())
	}
	sort.Strings(ids)

	want := []string{"p1", "p2", "p3", "p4"}
	if len(ids) != len(want) {
		t.Fatalf("got ids %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got ids %v, want %v", ids, want)
		}
	}
}

func TestFetchAllPages_PartialPageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "3" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"data":[{"file_code":"p%s"}],"total_pages":5}`, page)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	videos, err := client.FetchAllPages(context.Background(), server.URL, "", 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Page 3 contributes nothing; its siblings all survive.
	seen := make(map[string]bool, len(videos))
	for _, v := range videos {
		seen[v.VideoID()] = true
	}
	for _, id := range []string{"p1", "p2", "p4", "p5"} {
		if !seen[id] {
			t.Errorf("missing %s in %v", id, videos)
		}
	}
	if seen["p3"] {
		t.Error("failed page should not contribute records")
	}
}

func TestFetchAllPages_FirstPageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	_, err := client.FetchAllPages(context.Background(), server.URL, "", 2*time.Second)
	if err == nil {
		t.Fatal("expected error when page 1 fails")
	}
}

func TestFetchDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/abc123" {
			t.Errorf("path = %q, want /abc123", r.URL.Path)
		}
		fmt.Fprint(w, `{"result":{"embed":"https://e/abc123","download":"https://d/abc123"}}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	embed, download, err := client.FetchDetail(context.Background(), server.URL, "", "abc123", 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embed != "https://e/abc123" {
		t.Errorf("embed = %q", embed)
	}
	if download != "https://d/abc123" {
		t.Errorf("download = %q", download)
	}
}

func TestGet_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	_, err := client.FetchAllPages(context.Background(), server.URL, "", 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
