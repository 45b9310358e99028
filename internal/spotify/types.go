package spotify

// Track is the projection of a playlist track used by the analyzer.
// LeadArtistID is empty for local files and other non-catalog entries.
type Track struct {
	ID           string
	Name         string
	Album        string
	Artists      []string
	LeadArtistID string
}

// Playlist is a playlist summary from the user's playlist listing.
type Playlist struct {
	ID         string
	Name       string
	Owner      string
	TrackTotal int
}

// Wire types below mirror the relevant slices of the Web API payloads.
// See https://developer.spotify.com/documentation/web-api/reference/

type userProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistsPage struct {
	Items  []playlistSummary `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

type playlistSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// playlistDetail is the first-page envelope: the track page sits under
// "tracks" next to the playlist's own fields.
type playlistDetail struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Tracks trackPage `json:"tracks"`
}

type trackPage struct {
	Items []playlistItem `json:"items"`
	Total int            `json:"total"`
	Next  *string        `json:"next"`
}

// trackPageEnvelope decodes a follow-up page. The API serves these as
// bare track pages, but a nested "tracks" envelope is tolerated in case
// the upstream shape is ever normalized to match the first page.
type trackPageEnvelope struct {
	trackPage
	Tracks *trackPage `json:"tracks"`
}

func (e *trackPageEnvelope) page() trackPage {
	if e.Tracks != nil {
		return *e.Tracks
	}
	return e.trackPage
}

type playlistItem struct {
	IsLocal bool         `json:"is_local"`
	Track   *trackObject `json:"track"`
}

type trackObject struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	IsLocal bool        `json:"is_local"`
	Album   albumObject `json:"album"`
	Artists []artistRef `json:"artists"`
}

type albumObject struct {
	Name string `json:"name"`
}

type artistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type artistDetail struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
