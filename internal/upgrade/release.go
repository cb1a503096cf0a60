package upgrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
)

// httpClient is shared across every release-feed poll, the same
// package-level shared-client idiom internal/cluster.PostJSON/GetJSON use
// in the teacher.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// Release is one entry in a repository's release feed.
type Release struct {
	Version       string `json:"version"`
	DownloadURL   string `json:"download_url"`
	SignatureURL  string `json:"signature_url"`
	Notes         string `json:"notes"`
	Prerelease    bool   `json:"prerelease"`
}

// ReleaseFeed is the externally-consumed capability this package polls:
// the latest releases published for a repository.
type ReleaseFeed interface {
	FetchReleases(ctx context.Context, repo string) ([]Release, error)
}

// HTTPReleaseFeed fetches a JSON array of Release from a feed URL template
// with "%s" substituted for the repository name, adapted from
// internal/cluster.PostJSON's shared-client + JSON-decode idiom.
type HTTPReleaseFeed struct {
	URLTemplate string
}

// NewHTTPReleaseFeed builds a feed against urlTemplate, e.g.
// "https://releases.example.com/%s/releases.json".
func NewHTTPReleaseFeed(urlTemplate string) *HTTPReleaseFeed {
	return &HTTPReleaseFeed{URLTemplate: urlTemplate}
}

// FetchReleases GETs the feed for repo and decodes the JSON release list.
func (f *HTTPReleaseFeed) FetchReleases(ctx context.Context, repo string) ([]Release, error) {
	url := fmt.Sprintf(f.URLTemplate, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Network, "build release feed request", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Network, "fetch release feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, saorsaerr.New(saorsaerr.Network, fmt.Sprintf("release feed returned status %d", resp.StatusCode))
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Serialization, "decode release feed", err)
	}
	return releases, nil
}
