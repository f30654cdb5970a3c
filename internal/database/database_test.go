package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/musicuration-desk/internal/config"
	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/database/dbtest"
)

func TestDSN(t *testing.T) {
	dsn, err := database.DSN(config.Config{DBDriver: "mysql", DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "mcd"})
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(db:3306)/mcd?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = database.DSN(config.Config{DBDriver: "sqlite", DBName: "file:x?mode=memory"})
	require.NoError(t, err)
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", dsn)

	_, err = database.DSN(config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestClassify_MySQL(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2-Composer' for key 'song_artist_links.uq_song_artist_links_role'"}
	var cv *database.ConstraintViolation
	require.ErrorAs(t, database.Classify(dup), &cv)
	assert.Equal(t, database.UniqueViolation, cv.Kind)
	assert.Equal(t, database.UqSongArtistLinksRole, cv.Constraint)

	legacy := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'uq_users_username'"}
	assert.True(t, database.IsUnique(legacy, database.UqUsersUsername))
	assert.False(t, database.IsUnique(legacy, database.UqUsersEmail))

	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row: a foreign key constraint fails (`mcd`.`album_tracks`, CONSTRAINT `fk_album_tracks_song` FOREIGN KEY (`song_id`) REFERENCES `songs` (`id`))"}
	require.ErrorAs(t, database.Classify(fk), &cv)
	assert.Equal(t, database.ForeignKeyViolation, cv.Kind)
	assert.Equal(t, "fk_album_tracks_song", cv.Constraint)

	other := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	assert.Same(t, other, database.Classify(other))
	assert.Nil(t, database.Classify(nil))
}

func TestClassify_SQLite(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx, "INSERT INTO songs (title, created_at) VALUES (?, ?)", "Song", now)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO artists (name, created_at) VALUES (?, ?)", "Artist", now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "INSERT INTO song_artist_links (song_id, artist_id, role) VALUES (1, 1, 'Composer')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO song_artist_links (song_id, artist_id, role) VALUES (1, 1, 'Composer')")
	assert.True(t, database.IsUnique(err, database.UqSongArtistLinksRole), "got %v", err)

	_, err = db.ExecContext(ctx, "INSERT INTO song_artist_links (song_id, artist_id, role) VALUES (1, 99, 'Lyricist')")
	var cv *database.ConstraintViolation
	require.ErrorAs(t, database.Classify(err), &cv)
	assert.Equal(t, database.ForeignKeyViolation, cv.Kind)

	_, err = db.ExecContext(ctx, "INSERT INTO artists (name, created_at) VALUES (?, ?)", "Artist", now)
	assert.True(t, database.IsUnique(err, database.UqArtistsName), "got %v", err)
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tags`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	err = database.WithTx(context.Background(), db, func(tx database.DBTX) error {
		_, err := tx.ExecContext(context.Background(), "INSERT INTO tags (name) VALUES (?)", "live")
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = database.WithTx(context.Background(), db, func(database.DBTX) error { return boom })
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.Panics(t, func() {
		_ = database.WithTx(context.Background(), db, func(database.DBTX) error { panic("bad") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackPartialWrites(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	err := database.WithTx(ctx, db, func(tx database.DBTX) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES ('first')"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES ('first')")
		return err
	})
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&n))
	assert.Zero(t, n)
	assert.False(t, errors.Is(err, sql.ErrNoRows))
}
