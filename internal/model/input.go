package model

// Request payloads for catalog and collection writes. Validation tags are
// enforced by the HTTP layer before the payload reaches a repository.

type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type ArtistInput struct {
	Name            string  `json:"name" validate:"required,max=255"`
	SpotifyArtistID *string `json:"spotify_artist_id" validate:"omitempty,max=100"`
	Notes           *string `json:"notes"`
}

type ArtistAliasInput struct {
	AliasName string  `json:"alias_name" validate:"required,max=255"`
	Context   *string `json:"context" validate:"omitempty,max=255"`
}

type SongInput struct {
	Title         string  `json:"title" validate:"required,max=255"`
	ReleaseDate   Date    `json:"release_date"`
	SpotifySongID *string `json:"spotify_song_id" validate:"omitempty,max=100"`
	JasracCode    *string `json:"jasrac_code" validate:"omitempty,max=50"`
	JasracTitle   *string `json:"jasrac_title" validate:"omitempty,max=255"`
	Lyrics        *string `json:"lyrics"`
}

type SongArtistLinkInput struct {
	SongID   uint64 `json:"song_id" validate:"required"`
	ArtistID uint64 `json:"artist_id" validate:"required"`
	Role     string `json:"role" validate:"required,max=100"`
}

type SongTieupLinkInput struct {
	SongID    uint64  `json:"song_id" validate:"required"`
	TieupID   uint64  `json:"tieup_id" validate:"required"`
	Context   *string `json:"context" validate:"omitempty,max=255"`
	SortIndex *int    `json:"sort_index" validate:"omitempty,min=0"`
}

type TieupInput struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Category *string `json:"category" validate:"omitempty,max=100"`
}

type NameInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type PerformanceInput struct {
	ArtistID        uint64  `json:"artist_id" validate:"required"`
	TourID          *uint64 `json:"tour_id"`
	PerformanceType *string `json:"performance_type" validate:"omitempty,max=100"`
	Name            string  `json:"name" validate:"required,max=255"`
	Date            Date    `json:"date" validate:"required"`
	Venue           *string `json:"venue" validate:"omitempty,max=255"`
	StartTime       *string `json:"start_time" validate:"omitempty,datetime=15:04"`
}

type SetlistEntryInput struct {
	PerformanceID uint64  `json:"performance_id" validate:"required"`
	SongID        uint64  `json:"song_id" validate:"required"`
	OrderIndex    int     `json:"order_index" validate:"min=1"`
	Notes         *string `json:"notes" validate:"omitempty,max=100"`
}

type RosterEntryInput struct {
	PerformanceID uint64  `json:"performance_id" validate:"required"`
	ArtistID      uint64  `json:"artist_id" validate:"required"`
	Role          string  `json:"role" validate:"required,max=100"`
	Context       *string `json:"context" validate:"omitempty,max=255"`
}

type AlbumInput struct {
	Title          string  `json:"title" validate:"required,max=255"`
	ArtistID       *uint64 `json:"artist_id"`
	AlbumType      *string `json:"album_type" validate:"omitempty,max=50"`
	ReleaseDate    Date    `json:"release_date"`
	SpotifyAlbumID *string `json:"spotify_album_id" validate:"omitempty,max=100"`
}

type AlbumTrackInput struct {
	AlbumID     uint64 `json:"album_id" validate:"required"`
	SongID      uint64 `json:"song_id" validate:"required"`
	DiscNumber  int    `json:"disc_number" validate:"omitempty,min=1"`
	TrackNumber int    `json:"track_number" validate:"min=1"`
}

type AlbumRelationshipInput struct {
	AlbumID1         uint64 `json:"album_id_1" validate:"required"`
	AlbumID2         uint64 `json:"album_id_2" validate:"required,nefield=AlbumID1"`
	RelationshipType string `json:"relationship_type" validate:"required,max=100"`
}

type MerchandiseInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	ArtistID    *uint64 `json:"artist_id"`
	TourID      *uint64 `json:"tour_id"`
	PriceYen    *int    `json:"price_yen" validate:"omitempty,min=0"`
	ReleaseDate Date    `json:"release_date"`
}

type MerchandiseRelationshipInput struct {
	MerchandiseID1   uint64 `json:"merchandise_id_1" validate:"required"`
	MerchandiseID2   uint64 `json:"merchandise_id_2" validate:"required,nefield=MerchandiseID1"`
	RelationshipType string `json:"relationship_type" validate:"required,max=100"`
}

type StoreInput struct {
	Name  string  `json:"name" validate:"required,max=255"`
	URL   *string `json:"url" validate:"omitempty,url,max=512"`
	Notes *string `json:"notes"`
}

// PossessionInput carries no user id; the owner is the authenticated caller.
type PossessionInput struct {
	EntityType   string  `json:"entity_type" validate:"required,oneof=album merchandise"`
	EntityID     uint64  `json:"entity_id" validate:"required"`
	Status       string  `json:"status" validate:"omitempty,oneof=Owned Wishlist"`
	StoreID      *uint64 `json:"store_id"`
	AcquiredDate Date    `json:"acquired_date"`
	Notes        *string `json:"notes"`
}

// AttendanceInput carries no user id; the attendee is the authenticated caller.
type AttendanceInput struct {
	PerformanceID uint64  `json:"performance_id" validate:"required"`
	Notes         *string `json:"notes"`
}

// SongSearch holds the filters shared by the song listing and the Spotify
// id export.
type SongSearch struct {
	Skip           int     `json:"skip" query:"skip" validate:"min=0"`
	Limit          int     `json:"limit" query:"limit" validate:"min=0,max=100"`
	TitleSearch    string  `json:"title_search" query:"title_search"`
	SortBy         string  `json:"sort_by" query:"sort_by" validate:"omitempty,oneof=id title release_date"`
	RoleFilter     string  `json:"role_filter" query:"role_filter"`
	TieupIDFilter  *uint64 `json:"tieup_id_filter" query:"tieup_id_filter"`
	ArtistIDFilter *uint64 `json:"artist_id_filter" query:"artist_id_filter"`
}
