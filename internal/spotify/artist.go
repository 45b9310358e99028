package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ArtistGenres returns the genre list for an artist. An HTTP 204 or a
// non-JSON response body both mean "no genres available" and return
// (nil, nil); other failures return an error the caller can localize
// to this one artist.
func (c *Client) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	res, err := c.get(ctx, c.baseURL+"/artists/"+url.PathEscape(artistID))
	if err != nil {
		return nil, fmt.Errorf("fetching artist %s: %w", artistID, err)
	}

	if res.status == http.StatusNoContent || len(res.body) == 0 {
		return nil, nil
	}
	if !strings.Contains(res.contentType, "application/json") {
		return nil, nil
	}

	var artist artistDetail
	if err := json.Unmarshal(res.body, &artist); err != nil {
		// Declared JSON but unparseable: treat as no genres rather
		// than failing the whole aggregation.
		return nil, nil
	}

	return artist.Genres, nil
}
