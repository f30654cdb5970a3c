package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/musicuration-desk/internal/database/dbtest"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(dbtest.Open(t))
}

func seedSongAndArtist(t *testing.T, q *repository.Queries) (*model.Song, *model.Artist) {
	t.Helper()
	ctx := context.Background()
	s, err := q.Songs.Create(ctx, model.SongInput{Title: "Blue Moon", ReleaseDate: model.NewDate(2020, time.March, 3)})
	require.NoError(t, err)
	a, err := q.Artists.Create(ctx, model.ArtistInput{Name: "Aoi"})
	require.NoError(t, err)
	return s, a
}

func TestArtistLink_DuplicateRoleConflicts(t *testing.T) {
	st := newStore(t)
	q := st.Q()
	ctx := context.Background()
	s, a := seedSongAndArtist(t, q)

	_, err := q.Links.CreateArtistLink(ctx, model.SongArtistLinkInput{SongID: s.ID, ArtistID: a.ID, Role: "Composer"})
	require.NoError(t, err)

	_, err = q.Links.CreateArtistLink(ctx, model.SongArtistLinkInput{SongID: s.ID, ArtistID: a.ID, Role: "Composer"})
	var ce *repository.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "Composer")

	_, err = q.Links.CreateArtistLink(ctx, model.SongArtistLinkInput{SongID: s.ID, ArtistID: a.ID, Role: "Lyricist"})
	require.NoError(t, err)

	d, err := q.Songs.Detail(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, d.Contributors, 1)
	assert.Equal(t, []string{"Composer", "Lyricist"}, d.Contributors[0].Roles)
}

func TestArtistLink_MissingForeignKeys(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	s, _ := seedSongAndArtist(t, q)

	_, err := q.Links.CreateArtistLink(ctx, model.SongArtistLinkInput{SongID: s.ID, ArtistID: 999, Role: "Composer"})
	var nf *repository.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "artist", nf.Entity)
	assert.Equal(t, uint64(999), nf.ID)

	_, err = q.Links.CreateArtistLink(ctx, model.SongArtistLinkInput{SongID: 555, ArtistID: 1, Role: "Composer"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTieupLink_SortIndexUniquePerTieup(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	s1, _ := seedSongAndArtist(t, q)
	s2, err := q.Songs.Create(ctx, model.SongInput{Title: "Second"})
	require.NoError(t, err)
	tie, err := q.Masters.CreateTieup(ctx, model.TieupInput{Name: "Anime X", Category: ptr("anime")})
	require.NoError(t, err)

	_, err = q.Links.CreateTieupLink(ctx, model.SongTieupLinkInput{SongID: s1.ID, TieupID: tie.ID, SortIndex: ptr(1)})
	require.NoError(t, err)

	_, err = q.Links.CreateTieupLink(ctx, model.SongTieupLinkInput{SongID: s2.ID, TieupID: tie.ID, SortIndex: ptr(1)})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = q.Links.CreateTieupLink(ctx, model.SongTieupLinkInput{SongID: s1.ID, TieupID: tie.ID})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = q.Links.CreateTieupLink(ctx, model.SongTieupLinkInput{SongID: s2.ID, TieupID: tie.ID, SortIndex: ptr(2)})
	require.NoError(t, err)
}

func TestSong_ExternalIDConflictNamesOtherSong(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	first, err := q.Songs.Create(ctx, model.SongInput{Title: "First", SpotifySongID: ptr("sp1"), JasracCode: ptr("J-1")})
	require.NoError(t, err)

	_, err = q.Songs.Create(ctx, model.SongInput{Title: "Copy", SpotifySongID: ptr("sp1")})
	var ce *repository.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "First")

	second, err := q.Songs.Create(ctx, model.SongInput{Title: "Second", SpotifySongID: ptr("sp2")})
	require.NoError(t, err)

	// Updating a song with its own ids is fine; taking another song's is not.
	_, err = q.Songs.Update(ctx, first.ID, model.SongInput{Title: "First (remaster)", SpotifySongID: ptr("sp1"), JasracCode: ptr("J-1")})
	require.NoError(t, err)
	_, err = q.Songs.Update(ctx, second.ID, model.SongInput{Title: "Second", JasracCode: ptr("J-1")})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = q.Songs.Update(ctx, 404, model.SongInput{Title: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSong_SearchFiltersAndSorts(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	a, err := q.Artists.Create(ctx, model.ArtistInput{Name: "Aoi"})
	require.NoError(t, err)
	old, err := q.Songs.Create(ctx, model.SongInput{Title: "Morning Light", ReleaseDate: model.NewDate(2018, 1, 1), SpotifySongID: ptr("sp-old")})
	require.NoError(t, err)
	mid, err := q.Songs.Create(ctx, model.SongInput{Title: "Night Drive", ReleaseDate: model.NewDate(2021, 6, 1)})
	require.NoError(t, err)
	recent, err := q.Songs.Create(ctx, model.SongInput{Title: "Light Years", ReleaseDate: model.NewDate(2024, 2, 2), SpotifySongID: ptr("sp-new")})
	require.NoError(t, err)

	for _, l := range []model.SongArtistLinkInput{
		{SongID: old.ID, ArtistID: a.ID, Role: "Composer"},
		{SongID: old.ID, ArtistID: a.ID, Role: "Lyricist"},
		{SongID: recent.ID, ArtistID: a.ID, Role: "Vocalist"},
	} {
		_, err := q.Links.CreateArtistLink(ctx, l)
		require.NoError(t, err)
	}

	got, err := q.Songs.Search(ctx, model.SongSearch{SortBy: "release_date"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{recent.ID, mid.ID, old.ID}, []uint64{got[0].ID, got[1].ID, got[2].ID})

	got, err = q.Songs.Search(ctx, model.SongSearch{TitleSearch: "LIGHT", SortBy: "title"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Light Years", got[0].Title)

	// Two matching roles on one song still yield the song once.
	got, err = q.Songs.Search(ctx, model.SongSearch{RoleFilter: "Composer, Lyricist", ArtistIDFilter: &a.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, old.ID, got[0].ID)

	got, err = q.Songs.Search(ctx, model.SongSearch{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mid.ID, got[0].ID)

	ids, err := q.Songs.SpotifyIDs(ctx, model.SongSearch{ArtistIDFilter: &a.ID, SortBy: "release_date"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sp-new", "sp-old"}, ids)
}

func TestSong_DetailStatsAndDelete(t *testing.T) {
	st := newStore(t)
	q := st.Q()
	ctx := context.Background()
	s, a := seedSongAndArtist(t, q)
	tag, err := q.Masters.CreateTag(ctx, model.NameInput{Name: "ballad"})
	require.NoError(t, err)
	require.NoError(t, q.Songs.AddTag(ctx, s.ID, tag.ID))
	assert.ErrorIs(t, q.Songs.AddTag(ctx, s.ID, tag.ID), repository.ErrConflict)

	d, err := q.Songs.Detail(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, d.LastPlayedDate.Valid)
	assert.Zero(t, d.PlayCount)

	for i, day := range []int{10, 20} {
		p, err := q.Performances.Create(ctx, model.PerformanceInput{ArtistID: a.ID, Name: "Live", Date: model.NewDate(2025, time.July, day)})
		require.NoError(t, err)
		_, err = q.Performances.AddSetlistEntry(ctx, model.SetlistEntryInput{PerformanceID: p.ID, SongID: s.ID, OrderIndex: i + 1})
		require.NoError(t, err)
	}
	_, err = q.Links.CreateArtistLink(ctx, model.SongArtistLinkInput{SongID: s.ID, ArtistID: a.ID, Role: "Composer"})
	require.NoError(t, err)

	d, err = q.Songs.Detail(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.PlayCount)
	assert.Equal(t, "2025-07-20", d.LastPlayedDate.String())
	require.Len(t, d.Tags, 1)
	assert.Equal(t, "ballad", d.Tags[0].Name)

	require.NoError(t, st.Tx(ctx, func(q *repository.Queries) error { return q.Songs.Delete(ctx, s.ID) }))
	_, err = q.Songs.Get(ctx, s.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ad, err := q.Artists.Detail(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ad.SongsContributed)

	err = st.Tx(ctx, func(q *repository.Queries) error { return q.Songs.Delete(ctx, s.ID) })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArtist_DetailSongsAndUpdate(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	a, err := q.Artists.Create(ctx, model.ArtistInput{Name: "Aoi", SpotifyArtistID: ptr("art1")})
	require.NoError(t, err)
	other, err := q.Artists.Create(ctx, model.ArtistInput{Name: "Beni"})
	require.NoError(t, err)

	_, err = q.Artists.Create(ctx, model.ArtistInput{Name: "Aoi"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = q.Artists.Update(ctx, other.ID, model.ArtistInput{Name: "Beni", SpotifyArtistID: ptr("art1")})
	assert.ErrorIs(t, err, repository.ErrConflict)
	upd, err := q.Artists.Update(ctx, a.ID, model.ArtistInput{Name: "Aoi", SpotifyArtistID: ptr("art1"), Notes: ptr("vocalist")})
	require.NoError(t, err)
	assert.Equal(t, "vocalist", *upd.Notes)

	_, err = q.Artists.AddAlias(ctx, a.ID, model.ArtistAliasInput{AliasName: "AOI"})
	require.NoError(t, err)
	_, err = q.Artists.AddAlias(ctx, a.ID, model.ArtistAliasInput{AliasName: "AOI"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	s1, err := q.Songs.Create(ctx, model.SongInput{Title: "Zephyr", ReleaseDate: model.NewDate(2019, 1, 1)})
	require.NoError(t, err)
	s2, err := q.Songs.Create(ctx, model.SongInput{Title: "Aurora", ReleaseDate: model.NewDate(2023, 1, 1)})
	require.NoError(t, err)
	for _, l := range []model.SongArtistLinkInput{
		{SongID: s1.ID, ArtistID: a.ID, Role: "Composer"},
		{SongID: s1.ID, ArtistID: a.ID, Role: "Vocalist"},
		{SongID: s2.ID, ArtistID: a.ID, Role: "Vocalist"},
	} {
		_, err := q.Links.CreateArtistLink(ctx, l)
		require.NoError(t, err)
	}

	d, err := q.Artists.Detail(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, d.Aliases, 1)
	require.Len(t, d.SongsContributed, 2)
	assert.Equal(t, []string{"Composer", "Vocalist"}, d.SongsContributed[0].Roles)

	songs, err := q.Artists.Songs(ctx, a.ID, []string{"Vocalist"}, "")
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, s2.ID, songs[0].ID)

	songs, err = q.Artists.Songs(ctx, a.ID, nil, "title")
	require.NoError(t, err)
	require.Len(t, songs, 3)
	assert.Equal(t, "Aurora", songs[0].Title)

	_, err = q.Artists.Songs(ctx, 999, nil, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAlbum_TrackConflictsAndOrder(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	s1, a := seedSongAndArtist(t, q)
	s2, err := q.Songs.Create(ctx, model.SongInput{Title: "B-side"})
	require.NoError(t, err)
	al, err := q.Albums.Create(ctx, model.AlbumInput{Title: "First Album", ArtistID: &a.ID, SpotifyAlbumID: ptr("alb1")})
	require.NoError(t, err)

	_, err = q.Albums.Create(ctx, model.AlbumInput{Title: "Dup", SpotifyAlbumID: ptr("alb1")})
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = q.Albums.Create(ctx, model.AlbumInput{Title: "Ghost", ArtistID: ptr(uint64(77))})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = q.Albums.AddTrack(ctx, model.AlbumTrackInput{AlbumID: al.ID, SongID: s2.ID, DiscNumber: 1, TrackNumber: 2})
	require.NoError(t, err)
	_, err = q.Albums.AddTrack(ctx, model.AlbumTrackInput{AlbumID: al.ID, SongID: s1.ID, DiscNumber: 1, TrackNumber: 1})
	require.NoError(t, err)

	_, err = q.Albums.AddTrack(ctx, model.AlbumTrackInput{AlbumID: al.ID, SongID: s1.ID, DiscNumber: 1, TrackNumber: 3})
	var ce *repository.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "already on disc")

	_, err = q.Albums.AddTrack(ctx, model.AlbumTrackInput{AlbumID: al.ID, SongID: s1.ID, DiscNumber: 2, TrackNumber: 1})
	require.NoError(t, err)
	_, err = q.Albums.AddTrack(ctx, model.AlbumTrackInput{AlbumID: al.ID, SongID: s2.ID, DiscNumber: 2, TrackNumber: 1})
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "already taken")

	d, err := q.Albums.Detail(ctx, al.ID)
	require.NoError(t, err)
	require.Len(t, d.Tracks, 3)
	assert.Equal(t, "Blue Moon", d.Tracks[0].SongTitle)
	assert.Equal(t, 2, d.Tracks[1].TrackNumber)
	assert.Equal(t, 2, d.Tracks[2].DiscNumber)
}

func TestRelationships(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	a1, err := q.Albums.Create(ctx, model.AlbumInput{Title: "Original"})
	require.NoError(t, err)
	a2, err := q.Albums.Create(ctx, model.AlbumInput{Title: "Deluxe"})
	require.NoError(t, err)

	in := model.AlbumRelationshipInput{AlbumID1: a1.ID, AlbumID2: a2.ID, RelationshipType: "reissue"}
	_, err = q.Albums.AddRelationship(ctx, in)
	require.NoError(t, err)
	_, err = q.Albums.AddRelationship(ctx, in)
	assert.ErrorIs(t, err, repository.ErrConflict)

	m1, err := q.Goods.CreateMerchandise(ctx, model.MerchandiseInput{Name: "Tour Tee", PriceYen: ptr(3500)})
	require.NoError(t, err)
	m2, err := q.Goods.CreateMerchandise(ctx, model.MerchandiseInput{Name: "Tour Towel"})
	require.NoError(t, err)
	_, err = q.Goods.CreateMerchandise(ctx, model.MerchandiseInput{Name: "Tour Tee"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = q.Goods.AddRelationship(ctx, model.MerchandiseRelationshipInput{MerchandiseID1: m1.ID, MerchandiseID2: m2.ID, RelationshipType: "set"})
	require.NoError(t, err)
	_, err = q.Goods.AddRelationship(ctx, model.MerchandiseRelationshipInput{MerchandiseID1: m1.ID, MerchandiseID2: 99, RelationshipType: "set"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCollections(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	u, err := q.Users.Create(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	_, a := seedSongAndArtist(t, q)
	al, err := q.Albums.Create(ctx, model.AlbumInput{Title: "Album"})
	require.NoError(t, err)
	store, err := q.Goods.CreateStore(ctx, model.StoreInput{Name: "Tower"})
	require.NoError(t, err)
	_, err = q.Goods.CreateStore(ctx, model.StoreInput{Name: "Tower"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	p, err := q.Collections.AddPossession(ctx, u.ID, model.PossessionInput{
		EntityType: model.EntityAlbum, EntityID: al.ID, StoreID: &store.ID, AcquiredDate: model.NewDate(2025, 1, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOwned, p.Status)

	_, err = q.Collections.AddPossession(ctx, u.ID, model.PossessionInput{EntityType: model.EntityAlbum, EntityID: al.ID, Status: model.StatusWishlist})
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = q.Collections.AddPossession(ctx, u.ID, model.PossessionInput{EntityType: model.EntityMerchandise, EntityID: al.ID})
	var nf *repository.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "merchandise", nf.Entity)
	_, err = q.Collections.AddPossession(ctx, u.ID, model.PossessionInput{EntityType: "song", EntityID: 1})
	assert.True(t, errors.Is(err, repository.ErrUnknownEntityType))

	perf, err := q.Performances.Create(ctx, model.PerformanceInput{ArtistID: a.ID, Name: "Budokan", Date: model.NewDate(2025, 9, 1)})
	require.NoError(t, err)
	_, err = q.Collections.AddAttendance(ctx, u.ID, model.AttendanceInput{PerformanceID: perf.ID})
	require.NoError(t, err)
	_, err = q.Collections.AddAttendance(ctx, u.ID, model.AttendanceInput{PerformanceID: perf.ID})
	assert.ErrorIs(t, err, repository.ErrConflict)

	owned, err := q.Collections.Possessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "2025-01-05", owned[0].AcquiredDate.String())
	att, err := q.Collections.Attendances(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, att, 1)
}

func TestPerformance_DetailAndList(t *testing.T) {
	q := newStore(t).Q()
	ctx := context.Background()
	s, a := seedSongAndArtist(t, q)
	tour, err := q.Masters.CreateTour(ctx, model.NameInput{Name: "Spring Tour"})
	require.NoError(t, err)

	_, err = q.Performances.Create(ctx, model.PerformanceInput{ArtistID: a.ID, TourID: ptr(uint64(50)), Name: "x", Date: model.NewDate(2025, 1, 1)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	early, err := q.Performances.Create(ctx, model.PerformanceInput{ArtistID: a.ID, TourID: &tour.ID, Name: "Osaka", Date: model.NewDate(2025, 4, 1), StartTime: ptr("18:30")})
	require.NoError(t, err)
	late, err := q.Performances.Create(ctx, model.PerformanceInput{ArtistID: a.ID, Name: "Tokyo", Date: model.NewDate(2025, 5, 1)})
	require.NoError(t, err)

	s2, err := q.Songs.Create(ctx, model.SongInput{Title: "Opener"})
	require.NoError(t, err)
	_, err = q.Performances.AddSetlistEntry(ctx, model.SetlistEntryInput{PerformanceID: early.ID, SongID: s.ID, OrderIndex: 2})
	require.NoError(t, err)
	_, err = q.Performances.AddSetlistEntry(ctx, model.SetlistEntryInput{PerformanceID: early.ID, SongID: s2.ID, OrderIndex: 1})
	require.NoError(t, err)
	_, err = q.Performances.AddSetlistEntry(ctx, model.SetlistEntryInput{PerformanceID: early.ID, SongID: s2.ID, OrderIndex: 1})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = q.Performances.AddRosterEntry(ctx, model.RosterEntryInput{PerformanceID: early.ID, ArtistID: a.ID, Role: "Guitar"})
	require.NoError(t, err)
	_, err = q.Performances.AddRosterEntry(ctx, model.RosterEntryInput{PerformanceID: early.ID, ArtistID: a.ID, Role: "Guitar"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	d, err := q.Performances.Detail(ctx, early.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Tour)
	assert.Equal(t, "Spring Tour", d.Tour.Name)
	assert.Equal(t, "Aoi", d.Artist.Name)
	require.Len(t, d.Setlist, 2)
	assert.Equal(t, "Opener", d.Setlist[0].SongTitle)
	require.Len(t, d.Roster, 1)
	assert.Equal(t, "18:30", *d.StartTime)

	list, err := q.Performances.List(ctx, &a.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, late.ID, list[0].ID)
}

func TestTx_RollsBackOnConflict(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	err := st.Tx(ctx, func(q *repository.Queries) error {
		if _, err := q.Masters.CreateTag(ctx, model.NameInput{Name: "live"}); err != nil {
			return err
		}
		_, err := q.Masters.CreateTag(ctx, model.NameInput{Name: "live"})
		return err
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	tags, err := st.Q().Masters.ListTags(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
