package database

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConstraintKind distinguishes the integrity violations callers act on.
type ConstraintKind int

const (
	UniqueViolation ConstraintKind = iota + 1
	ForeignKeyViolation
)

func (k ConstraintKind) String() string {
	switch k {
	case UniqueViolation:
		return "unique"
	case ForeignKeyViolation:
		return "foreign key"
	}
	return "unknown"
}

// ConstraintViolation is a driver-independent integrity error. Constraint
// holds the schema name of the violated constraint (one of the Uq*
// constants) and may be empty when the driver does not report it.
type ConstraintViolation struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintViolation) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("%s constraint violated: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s constraint %s violated: %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintViolation) Unwrap() error { return e.Err }

// Unique constraint names. Both migration dialects declare exactly these.
const (
	UqUsersUsername            = "uq_users_username"
	UqUsersEmail               = "uq_users_email"
	UqRefreshTokensToken       = "uq_refresh_tokens_token"
	UqArtistsName              = "uq_artists_name"
	UqArtistsSpotifyID         = "uq_artists_spotify_id"
	UqArtistAliasesAlias       = "uq_artist_aliases_alias"
	UqSongsSpotifyID           = "uq_songs_spotify_id"
	UqSongsJasracCode          = "uq_songs_jasrac_code"
	UqTieupsName               = "uq_tieups_name"
	UqToursName                = "uq_tours_name"
	UqTagsName                 = "uq_tags_name"
	UqSongTagsPair             = "uq_song_tags_pair"
	UqSetlistEntriesOrder      = "uq_setlist_entries_order"
	UqPerformanceRosterEntry   = "uq_performance_roster_entry"
	UqSongArtistLinksRole      = "uq_song_artist_links_role"
	UqSongTieupLinksPair       = "uq_song_tieup_links_pair"
	UqSongTieupLinksSort       = "uq_song_tieup_links_sort"
	UqAlbumsSpotifyID          = "uq_albums_spotify_id"
	UqAlbumTracksOrder         = "uq_album_tracks_order"
	UqAlbumTracksSong          = "uq_album_tracks_song"
	UqAlbumRelationships       = "uq_album_relationships_triple"
	UqMerchandiseName          = "uq_merchandise_name"
	UqMerchandiseRelationships = "uq_merchandise_relationships_triple"
	UqStoresName               = "uq_stores_name"
	UqUserPossessionsEntity    = "uq_user_possessions_entity"
	UqUserAttendancesPerf      = "uq_user_attendances_performance"
)

type uniqueKey struct {
	name    string
	table   string
	columns []string
}

// SQLite reports unique violations by column list only, so the names are
// recovered from this table.
var uniqueKeys = []uniqueKey{
	{UqUsersUsername, "users", []string{"username"}},
	{UqUsersEmail, "users", []string{"email"}},
	{UqRefreshTokensToken, "refresh_tokens", []string{"token"}},
	{UqArtistsName, "artists", []string{"name"}},
	{UqArtistsSpotifyID, "artists", []string{"spotify_artist_id"}},
	{UqArtistAliasesAlias, "artist_aliases", []string{"artist_id", "alias_name"}},
	{UqSongsSpotifyID, "songs", []string{"spotify_song_id"}},
	{UqSongsJasracCode, "songs", []string{"jasrac_code"}},
	{UqTieupsName, "tieups", []string{"name"}},
	{UqToursName, "tours", []string{"name"}},
	{UqTagsName, "tags", []string{"name"}},
	{UqSongTagsPair, "song_tags", []string{"song_id", "tag_id"}},
	{UqSetlistEntriesOrder, "setlist_entries", []string{"performance_id", "order_index"}},
	{UqPerformanceRosterEntry, "performance_roster", []string{"performance_id", "artist_id", "role"}},
	{UqSongArtistLinksRole, "song_artist_links", []string{"song_id", "artist_id", "role"}},
	{UqSongTieupLinksPair, "song_tieup_links", []string{"song_id", "tieup_id"}},
	{UqSongTieupLinksSort, "song_tieup_links", []string{"tieup_id", "sort_index"}},
	{UqAlbumsSpotifyID, "albums", []string{"spotify_album_id"}},
	{UqAlbumTracksOrder, "album_tracks", []string{"album_id", "disc_number", "track_number"}},
	{UqAlbumTracksSong, "album_tracks", []string{"album_id", "disc_number", "song_id"}},
	{UqAlbumRelationships, "album_relationships", []string{"album_id_1", "album_id_2", "relationship_type"}},
	{UqMerchandiseName, "merchandise", []string{"name"}},
	{UqMerchandiseRelationships, "merchandise_relationships", []string{"merchandise_id_1", "merchandise_id_2", "relationship_type"}},
	{UqStoresName, "stores", []string{"name"}},
	{UqUserPossessionsEntity, "user_possessions", []string{"user_id", "entity_type", "entity_id"}},
	{UqUserAttendancesPerf, "user_attendances", []string{"user_id", "performance_id"}},
}

const (
	mysqlErrDupEntry     = 1062
	mysqlErrNoReferenced = 1452
)

var (
	mysqlDupKey = regexp.MustCompile(`for key '([^']+)'`)
	mysqlFKName = regexp.MustCompile("CONSTRAINT `([^`]+)`")
	sqliteCols  = regexp.MustCompile(`UNIQUE constraint failed: ([^(]+)`)
)

// Classify converts a driver error into a *ConstraintViolation. Errors that
// are not integrity violations are returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var existing *ConstraintViolation
	if errors.As(err, &existing) {
		return err
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDupEntry:
			name := ""
			if m := mysqlDupKey.FindStringSubmatch(me.Message); m != nil {
				name = m[1]
				// MySQL 8 prefixes the key with its table name
				if i := strings.LastIndex(name, "."); i >= 0 {
					name = name[i+1:]
				}
			}
			return &ConstraintViolation{Kind: UniqueViolation, Constraint: name, Err: err}
		case mysqlErrNoReferenced:
			name := ""
			if m := mysqlFKName.FindStringSubmatch(me.Message); m != nil {
				name = m[1]
			}
			return &ConstraintViolation{Kind: ForeignKeyViolation, Constraint: name, Err: err}
		}
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		if se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return err
		}
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return &ConstraintViolation{Kind: UniqueViolation, Constraint: sqliteUniqueName(msg), Err: err}
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return &ConstraintViolation{Kind: ForeignKeyViolation, Err: err}
		}
	}
	return err
}

// IsUnique reports whether err is a unique violation of the named
// constraint, or of any unique constraint when name is empty.
func IsUnique(err error, name string) bool {
	var cv *ConstraintViolation
	if !errors.As(Classify(err), &cv) || cv.Kind != UniqueViolation {
		return false
	}
	return name == "" || cv.Constraint == name
}

// sqliteUniqueName maps "UNIQUE constraint failed: t.a, t.b" to the
// registered constraint on table t with columns {a, b}.
func sqliteUniqueName(msg string) string {
	m := sqliteCols.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	var table string
	var cols []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		t, c, ok := strings.Cut(part, ".")
		if !ok {
			continue
		}
		table = t
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, k := range uniqueKeys {
		if k.table != table || len(k.columns) != len(cols) {
			continue
		}
		want := append([]string(nil), k.columns...)
		sort.Strings(want)
		if strings.Join(want, ",") == strings.Join(cols, ",") {
			return k.name
		}
	}
	return ""
}
