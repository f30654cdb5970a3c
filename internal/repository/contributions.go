package repository

import "github.com/iliyamo/musicuration-desk/internal/model"

// ContributionRow is one song_artist_links row joined with its song and
// artist. An artist holding two roles on a song yields two rows.
type ContributionRow struct {
	SongID      uint64
	SongTitle   string
	ReleaseDate model.Date
	ArtistID    uint64
	ArtistName  string
	Role        string
}

// SongContribution lists the roles one artist held on a song.
type SongContribution struct {
	SongID      uint64     `json:"song_id"`
	Title       string     `json:"title"`
	ReleaseDate model.Date `json:"release_date"`
	Roles       []string   `json:"roles"`
}

// ArtistContribution lists the roles an artist held on one song.
type ArtistContribution struct {
	ArtistID uint64   `json:"artist_id"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
}

// GroupBySong folds rows into one entry per song, in first-seen order, with
// distinct roles in first-seen order.
func GroupBySong(rows []ContributionRow) []SongContribution {
	out := make([]SongContribution, 0, len(rows))
	index := make(map[uint64]int, len(rows))
	for _, r := range rows {
		i, ok := index[r.SongID]
		if !ok {
			i = len(out)
			index[r.SongID] = i
			out = append(out, SongContribution{SongID: r.SongID, Title: r.SongTitle, ReleaseDate: r.ReleaseDate, Roles: []string{}})
		}
		out[i].Roles = appendDistinct(out[i].Roles, r.Role)
	}
	return out
}

// GroupByArtist is GroupBySong keyed by artist, used for a song's credits.
func GroupByArtist(rows []ContributionRow) []ArtistContribution {
	out := make([]ArtistContribution, 0, len(rows))
	index := make(map[uint64]int, len(rows))
	for _, r := range rows {
		i, ok := index[r.ArtistID]
		if !ok {
			i = len(out)
			index[r.ArtistID] = i
			out = append(out, ArtistContribution{ArtistID: r.ArtistID, Name: r.ArtistName, Roles: []string{}})
		}
		out[i].Roles = appendDistinct(out[i].Roles, r.Role)
	}
	return out
}

func appendDistinct(roles []string, role string) []string {
	for _, r := range roles {
		if r == role {
			return roles
		}
	}
	return append(roles, role)
}
