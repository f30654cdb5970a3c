package model

import "time"

// Catalog rows. Optional columns are pointers so they serialize as null.

type Artist struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	SpotifyArtistID *string   `json:"spotify_artist_id"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

type ArtistAlias struct {
	ID        uint64  `json:"id"`
	ArtistID  uint64  `json:"artist_id"`
	AliasName string  `json:"alias_name"`
	Context   *string `json:"context"`
}

type Song struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	ReleaseDate   Date      `json:"release_date"`
	SpotifySongID *string   `json:"spotify_song_id"`
	JasracCode    *string   `json:"jasrac_code"`
	JasracTitle   *string   `json:"jasrac_title"`
	Lyrics        *string   `json:"lyrics"`
	CreatedAt     time.Time `json:"created_at"`
}

type Tieup struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

type Tour struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// SongArtistLink attributes a contribution role on a song to an artist.
// One artist may hold several roles on the same song.
type SongArtistLink struct {
	ID       uint64 `json:"id"`
	SongID   uint64 `json:"song_id"`
	ArtistID uint64 `json:"artist_id"`
	Role     string `json:"role"`
}

type SongTieupLink struct {
	ID        uint64  `json:"id"`
	SongID    uint64  `json:"song_id"`
	TieupID   uint64  `json:"tieup_id"`
	Context   *string `json:"context"`
	SortIndex *int    `json:"sort_index"`
}

type Performance struct {
	ID              uint64  `json:"id"`
	ArtistID        uint64  `json:"artist_id"`
	TourID          *uint64 `json:"tour_id"`
	PerformanceType *string `json:"performance_type"`
	Name            string  `json:"name"`
	Date            Date    `json:"date"`
	Venue           *string `json:"venue"`
	StartTime       *string `json:"start_time"`
}

type SetlistEntry struct {
	ID            uint64  `json:"id"`
	PerformanceID uint64  `json:"performance_id"`
	SongID        uint64  `json:"song_id"`
	OrderIndex    int     `json:"order_index"`
	Notes         *string `json:"notes"`
}

type RosterEntry struct {
	ID            uint64  `json:"id"`
	PerformanceID uint64  `json:"performance_id"`
	ArtistID      uint64  `json:"artist_id"`
	Role          string  `json:"role"`
	Context       *string `json:"context"`
}

type Album struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	ArtistID       *uint64 `json:"artist_id"`
	AlbumType      *string `json:"album_type"`
	ReleaseDate    Date    `json:"release_date"`
	SpotifyAlbumID *string `json:"spotify_album_id"`
}

type AlbumTrack struct {
	ID          uint64 `json:"id"`
	AlbumID     uint64 `json:"album_id"`
	SongID      uint64 `json:"song_id"`
	DiscNumber  int    `json:"disc_number"`
	TrackNumber int    `json:"track_number"`
}

type AlbumRelationship struct {
	ID               uint64 `json:"id"`
	AlbumID1         uint64 `json:"album_id_1"`
	AlbumID2         uint64 `json:"album_id_2"`
	RelationshipType string `json:"relationship_type"`
}

type Merchandise struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Category    *string `json:"category"`
	ArtistID    *uint64 `json:"artist_id"`
	TourID      *uint64 `json:"tour_id"`
	PriceYen    *int    `json:"price_yen"`
	ReleaseDate Date    `json:"release_date"`
}

type MerchandiseRelationship struct {
	ID               uint64 `json:"id"`
	MerchandiseID1   uint64 `json:"merchandise_id_1"`
	MerchandiseID2   uint64 `json:"merchandise_id_2"`
	RelationshipType string `json:"relationship_type"`
}

type Store struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	URL   *string `json:"url"`
	Notes *string `json:"notes"`
}
