package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const DefaultAPIBase = "https://api.github.com"

// maxReleaseBody bounds how much of the API response is read.
const maxReleaseBody = 1 << 20

// ReleaseResolver turns the version "latest" into the tag of a repository's newest release.
type ReleaseResolver struct {
	client  *http.Client
	apiBase string
	token   string
}

// NewReleaseResolver creates a resolver against apiBase (GITHUB_API_URL on Actions runners).
// token is optional and only raises the API rate limit.
func NewReleaseResolver(client *http.Client, apiBase, token string) *ReleaseResolver {
	if client == nil {
		client = http.DefaultClient
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &ReleaseResolver{
		client:  client,
		apiBase: strings.TrimSuffix(apiBase, "/"),
		token:   token,
	}
}

// Latest returns the tag name of the latest release of repo ("owner/name").
func (r *ReleaseResolver) Latest(ctx context.Context, repo string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/latest", r.apiBase, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", &ReleaseLookupError{Repository: repo, Wrapped: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ReleaseLookupError{Repository: repo, Wrapped: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReleaseBody))
	if err != nil {
		return "", &ReleaseLookupError{Repository: repo, Wrapped: err}
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "message").String()
		return "", &ReleaseLookupError{
			Repository: repo,
			Wrapped:    fmt.Errorf("status %d from %s: %s", resp.StatusCode, endpoint, msg),
		}
	}
	if !gjson.ValidBytes(body) {
		return "", &ReleaseLookupError{Repository: repo, Wrapped: errors.New("response is not valid JSON")}
	}

	tag := gjson.GetBytes(body, "tag_name")
	if !tag.Exists() || tag.String() == "" {
		return "", &ReleaseLookupError{Repository: repo, Wrapped: errors.New("response has no tag_name")}
	}
	return tag.String(), nil
}
