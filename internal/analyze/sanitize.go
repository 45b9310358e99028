package analyze

import "strings"

// Frequency-table keys travel through a URL query string as JSON, so
// quote characters are escaped with a percent-style scheme. Escaping
// the percent sign itself first makes the mapping injective: distinct
// raw keys can never collapse to the same escaped key, and unescaping
// is total, even for keys that already contain marker-looking text.
var (
	keyEscaper = strings.NewReplacer(
		"%", "%25",
		"'", "%27",
		`"`, "%22",
	)
	keyUnescaper = strings.NewReplacer(
		"%27", "'",
		"%22", `"`,
		"%25", "%",
	)
)

// EscapeKey makes a single table key transport-safe.
func EscapeKey(key string) string {
	return keyEscaper.Replace(key)
}

// UnescapeKey reverses EscapeKey.
func UnescapeKey(key string) string {
	return keyUnescaper.Replace(key)
}

// EscapeKeys returns a copy of the table with every key escaped for
// transport.
func EscapeKeys(table FrequencyTable) FrequencyTable {
	out := make(FrequencyTable, len(table))
	for key, count := range table {
		out[EscapeKey(key)] = count
	}
	return out
}

// UnescapeKeys returns a copy of the table with every key restored to
// its display form.
func UnescapeKeys(table FrequencyTable) FrequencyTable {
	out := make(FrequencyTable, len(table))
	for key, count := range table {
		out[UnescapeKey(key)] = count
	}
	return out
}

// EscapeResult returns a copy of the result with all three tables'
// keys escaped.
func EscapeResult(r *Result) *Result {
	return &Result{
		PlaylistName: r.PlaylistName,
		TrackTotal:   r.TrackTotal,
		Artists:      EscapeKeys(r.Artists),
		Albums:       EscapeKeys(r.Albums),
		Genres:       EscapeKeys(r.Genres),
	}
}

// UnescapeResult reverses EscapeResult.
func UnescapeResult(r *Result) *Result {
	return &Result{
		PlaylistName: r.PlaylistName,
		TrackTotal:   r.TrackTotal,
		Artists:      UnescapeKeys(r.Artists),
		Albums:       UnescapeKeys(r.Albums),
		Genres:       UnescapeKeys(r.Genres),
	}
}
