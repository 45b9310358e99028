// Package analyze turns a playlist's track sequence into artist, album,
// and genre frequency tables for chart rendering.
package analyze

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mgreer/playlist-charts/internal/spotify"
)

// Placeholder buckets for blank metadata.
const (
	UnknownAlbum = "Album Unknown"
	UnknownGenre = "Other Genre"
)

// FrequencyTable maps a display key to its occurrence count within one
// playlist analysis.
type FrequencyTable map[string]int

// Result holds the three frequency tables and playlist metadata for
// one analysis run.
type Result struct {
	PlaylistName string         `json:"playlist_name"`
	TrackTotal   int            `json:"track_total"`
	Artists      FrequencyTable `json:"artists"`
	Albums       FrequencyTable `json:"albums"`
	Genres       FrequencyTable `json:"genres"`
}

// GenreCache is the persisted artist name to genre list mapping.
type GenreCache interface {
	Snapshot() (map[string][]string, error)
	Merge(discovered map[string][]string) error
}

// GenreLookup resolves genres for an artist by catalog ID.
type GenreLookup interface {
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)
}

// Analyzer aggregates tracks, resolving genres against the cache first
// and the remote lookup second.
type Analyzer struct {
	cache  GenreCache
	lookup GenreLookup
	logger *log.Logger
}

// New creates an Analyzer. A nil logger discards diagnostics.
func New(cache GenreCache, lookup GenreLookup, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Analyzer{
		cache:  cache,
		lookup: lookup,
		logger: logger,
	}
}

// Analyze computes the three frequency tables for a track sequence.
//
// Counting attributes each track to its lead artist only, the first
// name in the artist list; featured artists are not counted. Genres
// are resolved once per distinct lead artist after the scan: cached
// artists cost no remote calls, uncached artists with a catalog ID
// cost exactly one, and artists without an ID (local files) are
// skipped. A failed lookup drops that artist's genre contribution
// without aborting the run. Newly discovered genres are merged into
// the cache after the pass.
func (a *Analyzer) Analyze(ctx context.Context, playlistName string, tracks []spotify.Track) (*Result, error) {
	result := &Result{
		PlaylistName: playlistName,
		Artists:      make(FrequencyTable),
		Albums:       make(FrequencyTable),
		Genres:       make(FrequencyTable),
	}

	// leadIDs remembers the catalog ID seen for each distinct lead
	// artist, empty for non-catalog entries.
	leadIDs := make(map[string]string)

	for _, track := range tracks {
		if len(track.Artists) == 0 {
			a.logger.Debug("track has no artists, skipping", "track", track.Name)
			continue
		}
		result.TrackTotal++

		lead := track.Artists[0]
		result.Artists[lead]++
		if _, seen := leadIDs[lead]; !seen {
			leadIDs[lead] = track.LeadArtistID
		}

		album := track.Album
		if strings.TrimSpace(album) == "" {
			album = UnknownAlbum
		}
		result.Albums[album]++
	}

	if err := a.resolveGenres(ctx, leadIDs, result); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveGenres fills the genre table for every distinct lead artist
// and writes newly discovered mappings back to the cache.
func (a *Analyzer) resolveGenres(ctx context.Context, leadIDs map[string]string, result *Result) error {
	cached, err := a.cache.Snapshot()
	if err != nil {
		return fmt.Errorf("loading genre cache: %w", err)
	}

	discovered := make(map[string][]string)

	for artist, artistID := range leadIDs {
		genres, ok := cached[artist]
		if !ok {
			if artistID == "" {
				a.logger.Debug("artist has no catalog id, skipping genre lookup", "artist", artist)
				continue
			}

			genres, err = a.lookup.ArtistGenres(ctx, artistID)
			if err != nil {
				a.logger.Warn("genre lookup failed", "artist", artist, "err", err)
				continue
			}
			discovered[artist] = genres
		}

		trackCount := result.Artists[artist]
		for _, genre := range genres {
			if strings.TrimSpace(genre) == "" {
				genre = UnknownGenre
			}
			result.Genres[genre] += trackCount
		}
	}

	if err := a.cache.Merge(discovered); err != nil {
		// The tables are already complete; a failed write-back only
		// costs future cache hits.
		a.logger.Warn("persisting discovered genres failed", "err", err)
	}

	return nil
}
