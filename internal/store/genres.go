package store

import "path/filepath"

const genreFileName = "genres.json"

// GenreCache persists the global artist name to genre list mapping.
// One aggregation run reads a snapshot up front and merges its newly
// discovered entries back after a full successful pass.
type GenreCache struct {
	file *File[[]string]
}

// NewGenreCache creates a genre cache under the given data directory.
func NewGenreCache(dataDir string) *GenreCache {
	return &GenreCache{file: NewFile[[]string](filepath.Join(dataDir, genreFileName))}
}

// Snapshot returns the current mapping. The returned map is owned by
// the caller and safe to read during a whole run.
func (c *GenreCache) Snapshot() (map[string][]string, error) {
	return c.file.Load()
}

// Merge writes newly discovered artist genres through to the persisted
// mapping. Existing entries are overwritten per artist.
func (c *GenreCache) Merge(discovered map[string][]string) error {
	if len(discovered) == 0 {
		return nil
	}
	return c.file.Update(func(doc map[string][]string) error {
		for artist, genres := range discovered {
			doc[artist] = genres
		}
		return nil
	})
}
