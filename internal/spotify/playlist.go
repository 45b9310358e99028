package spotify

import (
	"context"
	"fmt"
	"net/url"
)

// playlistPageLimit is the hard cap the API enforces per page.
const playlistPageLimit = 50

// ListPlaylists returns all of the current user's playlists, paging
// through the listing with limit/offset until the declared total is
// reached.
func (c *Client) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	offset := 0

	for {
		params := url.Values{
			"limit":  {fmt.Sprint(playlistPageLimit)},
			"offset": {fmt.Sprint(offset)},
		}

		var page playlistsPage
		if err := c.getJSON(ctx, c.baseURL+"/me/playlists?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}

		for _, item := range page.Items {
			playlists = append(playlists, Playlist{
				ID:         item.ID,
				Name:       item.Name,
				Owner:      item.Owner.DisplayName,
				TrackTotal: item.Tracks.Total,
			})
		}

		offset += len(page.Items)
		if offset >= page.Total || len(page.Items) == 0 {
			return playlists, nil
		}
	}
}

// FetchAllTracks materializes a playlist's full track list. The first
// response nests the track page under "tracks" alongside the playlist's
// display name and declared total; subsequent pages arrive at the
// server-supplied next URL as bare track pages. Returns the ordered
// tracks, the playlist name (captured from the first page only), and
// the declared total. Any HTTP failure aborts with no partial result.
func (c *Client) FetchAllTracks(ctx context.Context, playlistID string) ([]Track, string, int, error) {
	var detail playlistDetail
	if err := c.getJSON(ctx, c.baseURL+"/playlists/"+url.PathEscape(playlistID), &detail); err != nil {
		return nil, "", 0, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	declaredTotal := detail.Tracks.Total
	tracks := projectItems(nil, detail.Tracks.Items)
	next := detail.Tracks.Next

	for next != nil {
		var envelope trackPageEnvelope
		if err := c.getJSON(ctx, *next, &envelope); err != nil {
			return nil, "", 0, fmt.Errorf("fetching playlist page: %w", err)
		}

		page := envelope.page()
		tracks = projectItems(tracks, page.Items)
		next = page.Next
	}

	// The remote is the source of truth for the total; a mismatch is
	// worth noticing but not fatal.
	if len(tracks) != declaredTotal {
		c.logger.Warn("playlist track count mismatch",
			"playlist", playlistID,
			"declared", declaredTotal,
			"fetched", len(tracks))
	}

	return tracks, detail.Name, declaredTotal, nil
}

// projectItems appends the projection of each page item to dst.
// Items with no track object (removed or unavailable entries) are
// skipped; local files keep their metadata but carry no lead artist ID.
func projectItems(dst []Track, items []playlistItem) []Track {
	for _, item := range items {
		if item.Track == nil {
			continue
		}

		t := Track{
			ID:    item.Track.ID,
			Name:  item.Track.Name,
			Album: item.Track.Album.Name,
		}
		for _, artist := range item.Track.Artists {
			t.Artists = append(t.Artists, artist.Name)
		}
		if !item.IsLocal && !item.Track.IsLocal && len(item.Track.Artists) > 0 {
			t.LeadArtistID = item.Track.Artists[0].ID
		}

		dst = append(dst, t)
	}
	return dst
}
