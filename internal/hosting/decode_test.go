package hosting

import (
	"testing"
)

func TestDecodeListing(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCount  int
		wantPages  int
		wantErr    bool
		wantFirst  string
	}{
		{
			name:      "bare array",
			body:      `[{"file_code":"abc","title":"The Matrix (1999).mkv"}]`,
			wantCount: 1,
			wantPages: 1,
			wantFirst: "abc",
		},
		{
			name:      "empty bare array",
			body:      `[]`,
			wantCount: 0,
			wantPages: 1,
		},
		{
			name:      "data envelope with total_pages",
			body:      `{"data":[{"code":"x1"},{"code":"x2"}],"total_pages":7}`,
			wantCount: 2,
			wantPages: 7,
			wantFirst: "x1",
		},
		{
			name:      "results envelope with camelCase pages",
			body:      `{"results":[{"file_code":"r1"}],"totalPages":3}`,
			wantCount: 1,
			wantPages: 3,
			wantFirst: "r1",
		},
		{
			name:      "data preferred over results",
			body:      `{"data":[{"code":"d1"}],"results":[{"code":"r1"}]}`,
			wantCount: 1,
			wantPages: 1,
			wantFirst: "d1",
		},
		{
			name:      "last_page variant",
			body:      `{"data":[],"last_page":12}`,
			wantCount: 0,
			wantPages: 12,
		},
		{
			name:      "envelope without page count defaults to one",
			body:      `{"data":[{"code":"a"}]}`,
			wantCount: 1,
			wantPages: 1,
			wantFirst: "a",
		},
		{
			name:      "page count field order over map order",
			body:      `{"data":[],"pages":5,"total_pages":2}`,
			wantCount: 0,
			wantPages: 2,
		},
		{
			name:      "zero page count ignored",
			body:      `{"data":[],"total_pages":0,"pages":4}`,
			wantCount: 0,
			wantPages: 4,
		},
		{
			name:    "envelope without list field",
			body:    `{"status":"ok","total_pages":3}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `<html>not found</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos, pages, err := decodeListing([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(videos) != tt.wantCount {
				t.Errorf("got %d videos, want %d", len(videos), tt.wantCount)
			}
			if pages != tt.wantPages {
				t.Errorf("got %d pages, want %d", pages, tt.wantPages)
			}
			if tt.wantFirst != "" && videos[0].VideoID() != tt.wantFirst {
				t.Errorf("first video id = %q, want %q", videos[0].VideoID(), tt.wantFirst)
			}
		})
	}
}

func TestDecodeDetail(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantEmbed    string
		wantDownload string
		wantErr      bool
	}{
		{
			name:         "flat fields",
			body:         `{"embed":"https://e/1","download":"https://d/1"}`,
			wantEmbed:    "https://e/1",
			wantDownload: "https://d/1",
		},
		{
			name:         "camelCase fields",
			body:         `{"embedUrl":"https://e/2","downloadUrl":"https://d/2"}`,
			wantEmbed:    "https://e/2",
			wantDownload: "https://d/2",
		},
		{
			name:         "nested under result",
			body:         `{"result":{"embed":"https://e/3","premiumDownload":"https://d/3"}}`,
			wantEmbed:    "https://e/3",
			wantDownload: "https://d/3",
		},
		{
			name:         "nested under data",
			body:         `{"data":{"embedUrl":"https://e/4"}}`,
			wantEmbed:    "https://e/4",
			wantDownload: "",
		},
		{
			name:         "empty detail",
			body:         `{}`,
			wantEmbed:    "",
			wantDownload: "",
		},
		{
			name:    "not json",
			body:    `oops`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed, download, err := decodeDetail([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if embed != tt.wantEmbed {
				t.Errorf("embed = %q, want %q", embed, tt.wantEmbed)
			}
			if download != tt.wantDownload {
				t.Errorf("download = %q, want %q", download, tt.wantDownload)
			}
		})
	}
}

func TestRawVideoAccessors(t *testing.T) {
	v := RawVideo{FileCode: "fc", Code: "c", Title: "T", FileTitle: "ft"}
	if got := v.VideoID(); got != "fc" {
		t.Errorf("VideoID = %q, want fc", got)
	}
	if got := v.VideoName(); got != "T" {
		t.Errorf("VideoName = %q, want T", got)
	}

	v = RawVideo{Code: "c", FileTitle: "ft"}
	if got := v.VideoID(); got != "c" {
		t.Errorf("VideoID = %q, want c", got)
	}
	if got := v.VideoName(); got != "ft" {
		t.Errorf("VideoName = %q, want ft", got)
	}
}
