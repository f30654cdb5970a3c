package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/handler"
)

// RegisterCatalog registers the public catalog endpoints. cache serves GETs
// from Redis and purges them after successful writes.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	// Route-level middleware rather than a prefix-less group: a group would
	// also claim unmatched paths.
	g := routes{e: e, mw: []echo.MiddlewareFunc{cache}}

	// ---- Artists ----
	g.POST("/artists", h.CreateArtist)
	g.GET("/artists", h.ListArtists)
	g.GET("/artists/:id", h.GetArtist)
	g.PUT("/artists/:id", h.UpdateArtist)
	g.GET("/artists/:id/songs", h.ArtistSongs)
	g.POST("/artists/:id/aliases", h.AddArtistAlias)

	// ---- Songs ----
	g.POST("/songs", h.CreateSong)
	g.GET("/songs", h.ListSongs)
	g.POST("/songs/generate-spotify-ids", h.GenerateSpotifyIDs)
	g.GET("/songs/:id", h.GetSong)
	g.PUT("/songs/:id", h.UpdateSong)
	g.DELETE("/songs/:id", h.DeleteSong)
	g.POST("/songs/:id/tags/:tag_id", h.TagSong)

	g.POST("/song_artist_links", h.CreateSongArtistLink)
	g.POST("/song_tieup_links", h.CreateSongTieupLink)

	// ---- Master data ----
	g.POST("/tieups", h.CreateTieup)
	g.GET("/tieups", h.ListTieups)
	g.POST("/tours", h.CreateTour)
	g.GET("/tours", h.ListTours)
	g.POST("/tags", h.CreateTag)
	g.GET("/tags", h.ListTags)

	// ---- Performances ----
	g.POST("/performances", h.CreatePerformance)
	g.GET("/performances", h.ListPerformances)
	g.GET("/performances/:id", h.GetPerformance)
	g.POST("/setlist_entries", h.CreateSetlistEntry)
	g.POST("/performance_roster", h.CreateRosterEntry)

	// ---- Albums ----
	g.POST("/albums", h.CreateAlbum)
	g.GET("/albums/:id", h.GetAlbum)
	g.POST("/album_tracks", h.CreateAlbumTrack)
	g.POST("/album_relationships", h.CreateAlbumRelationship)

	// ---- Goods ----
	g.POST("/merchandises", h.CreateMerchandise)
	g.POST("/stores", h.CreateStore)
	// Path spelling kept for existing clients.
	g.POST("/merchandice_relationships", h.CreateMerchandiseRelationship)
}

// routes registers each route with the same route-level middleware.
type routes struct {
	e  *echo.Echo
	mw []echo.MiddlewareFunc
}

func (r routes) GET(path string, h echo.HandlerFunc)    { r.e.GET(path, h, r.mw...) }
func (r routes) POST(path string, h echo.HandlerFunc)   { r.e.POST(path, h, r.mw...) }
func (r routes) PUT(path string, h echo.HandlerFunc)    { r.e.PUT(path, h, r.mw...) }
func (r routes) DELETE(path string, h echo.HandlerFunc) { r.e.DELETE(path, h, r.mw...) }
