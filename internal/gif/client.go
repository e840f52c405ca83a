// Package gif implements the small Tenor search client used by the "gif"
// chat command to drop a reaction GIF into a pull request thread.
package gif

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/prbot/prbot/pkg/errors"
)

const (
	baseURL      = "https://g.tenor.com/v1/search"
	resultLimit  = "3"
	locale       = "en_US"
	contentFilter = "low"
	mediaFilter  = "basic"
	arRange      = "all"
	mediaFormat  = "tinygif"
)

// Client queries Tenor for a GIF url matching a search term.
type Client interface {
	QueryFirstMatch(ctx context.Context, query string) (string, error)
}

type client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a Tenor client authenticated with apiKey.
func NewClient(apiKey string) Client {
	return &client{apiKey: apiKey, httpClient: http.DefaultClient, baseURL: baseURL}
}

type tenorMediaObject struct {
	URL string `json:"url"`
}

type tenorResult struct {
	Media []map[string]tenorMediaObject `json:"media"`
}

type tenorResponse struct {
	Results []tenorResult `json:"results"`
}

// QueryFirstMatch returns the first tinygif URL matching query, or "" if
// Tenor returned no results.
func (c *client) QueryFirstMatch(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"q":             {query},
		"key":           {c.apiKey},
		"limit":         {resultLimit},
		"locale":        {locale},
		"contentfilter": {contentFilter},
		"media_filter":  {mediaFilter},
		"ar_range":      {arRange},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to build tenor request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePlatform, "tenor request failed", err)
	}
	defer resp.Body.Close()

	var parsed tenorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrap(errors.ErrCodePlatform, "failed to parse tenor response", err)
	}

	for _, result := range parsed.Results {
		for _, media := range result.Media {
			if obj, ok := media[mediaFormat]; ok {
				return obj.URL, nil
			}
		}
	}
	return "", nil
}
