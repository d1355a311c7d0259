package hosting

import (
	"encoding/json"
	"fmt"
)

// Providers are inconsistent about response shape: some return a bare array
// of videos, others wrap the list in "data" or "results" and report the page
// count under one of several names. decodeListing applies the extraction
// rules in priority order instead of probing fields ad hoc.

// listFields are probed in order for the video list of an enveloped response.
var listFields = []string{"data", "results"}

// pageCountFields are probed in order for the total page count.
var pageCountFields = []string{"total_pages", "totalPages", "pages", "last_page", "page_count"}

// decodeListing decodes a listing response body into its video records and
// total page count. A bare array means a single unpaginated page. An
// envelope without any recognized page-count field defaults to one page.
func decodeListing(body []byte) ([]RawVideo, int, error) {
	var bare []RawVideo
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, 1, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("unrecognized listing shape: %w", err)
	}

	var videos []RawVideo
	found := false
	for _, field := range listFields {
		raw, ok := envelope[field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &videos); err != nil {
			return nil, 0, fmt.Errorf("decode %q field: %w", field, err)
		}
		found = true
		break
	}
	if !found {
		return nil, 0, fmt.Errorf("listing envelope has no video list field")
	}

	totalPages := 1
	for _, field := range pageCountFields {
		raw, ok := envelope[field]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
			totalPages = n
			break
		}
	}

	return videos, totalPages, nil
}

// detailFields is a per-video detail response. Embed and download URLs may
// appear flat or nested under "result" or "data".
type detailFields struct {
	Embed           string `json:"embed"`
	EmbedURL        string `json:"embedUrl"`
	Download        string `json:"download"`
	DownloadURL     string `json:"downloadUrl"`
	PremiumDownload string `json:"premiumDownload"`
}

type detailEnvelope struct {
	detailFields
	Result *detailFields `json:"result"`
	Data   *detailFields `json:"data"`
}

// decodeDetail extracts embed and download URLs from a detail response.
// Either may be empty when the provider omits it.
func decodeDetail(body []byte) (embed, download string, err error) {
	var env detailEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", "", fmt.Errorf("decode detail response: %w", err)
	}

	fields := env.detailFields
	if nested := env.Result; nested != nil {
		fields = *nested
	} else if nested := env.Data; nested != nil {
		fields = *nested
	}

	embed = fields.Embed
	if embed == "" {
		embed = fields.EmbedURL
	}

	download = fields.Download
	if download == "" {
		download = fields.DownloadURL
	}
	if download == "" {
		download = fields.PremiumDownload
	}

	return embed, download, nil
}
