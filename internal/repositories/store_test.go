package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/repositories"
	"github.com/Wal-20/roomchat/internal/testutil"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"postgres serialization", &pgconn.PgError{Code: "40001"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, repositories.IsTransient(tc.err))
		})
	}
}

func TestStore_Transaction(t *testing.T) {
	ctx := context.Background()

	t.Run("should retry transient failures and then give up", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewStore(testutil.NewDB(t), testutil.Logger(), repositories.WithAttempts(3))

		calls := 0
		err := store.Transaction(ctx, func(r repositories.Repos) error {
			calls++
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		})
		req.ErrorIs(err, repositories.ErrStoreUnavailable)
		req.Equal(3, calls)
	})

	t.Run("should not retry permanent failures", func(t *testing.T) {
		req := require.New(t)
		store, _ := testutil.NewStore(t)
		boom := errors.New("boom")

		calls := 0
		err := store.Transaction(ctx, func(r repositories.Repos) error {
			calls++
			return boom
		})
		req.ErrorIs(err, boom)
		req.Equal(1, calls)
	})

	t.Run("should roll back everything on failure", func(t *testing.T) {
		req := require.New(t)
		store, db := testutil.NewStore(t)
		users := testutil.CreateUsers(t, db, "alice")

		err := store.Transaction(ctx, func(r repositories.Repos) error {
			room := &models.Room{Name: "Doomed"}
			if err := r.Rooms.Create(room); err != nil {
				return err
			}
			if _, err := r.Members.CreateIfAbsent(&models.Member{RoomID: room.ID, UserID: users[0].ID, IsAdmin: true}); err != nil {
				return err
			}
			return errors.New("abort")
		})
		req.Error(err)

		var rooms, members int64
		req.NoError(db.Model(&models.Room{}).Count(&rooms).Error)
		req.NoError(db.Model(&models.Member{}).Count(&members).Error)
		req.Zero(rooms)
		req.Zero(members)
	})

	t.Run("should survive a cancelled caller", func(t *testing.T) {
		req := require.New(t)
		store, db := testutil.NewStore(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := store.Transaction(cancelled, func(r repositories.Repos) error {
			return r.Users.Create(&models.User{Name: "late"})
		})
		req.NoError(err)
		var n int64
		req.NoError(db.Model(&models.User{}).Where("name = ?", "late").Count(&n).Error)
		req.EqualValues(1, n)
	})
}

func TestInvitationRepository_PendingIsUnique(t *testing.T) {
	req := require.New(t)
	db := testutil.NewDB(t)
	users := testutil.CreateUsers(t, db, "alice", "bob")
	room := models.Room{Name: "Secret", IsPrivate: true}
	req.NoError(db.Create(&room).Error)
	invitations := repositories.NewInvitationRepository(db)

	first := &models.Invitation{RoomID: room.ID, InviterID: users[0].ID, InviteeID: users[1].ID}
	ok, err := invitations.CreatePending(first)
	req.NoError(err)
	req.True(ok)

	// The unique index alone rejects a second pending row
	ok, err = invitations.CreatePending(&models.Invitation{RoomID: room.ID, InviterID: users[0].ID, InviteeID: users[1].ID})
	req.NoError(err)
	req.False(ok)

	resolved, err := invitations.Resolve(first.ID, models.InvitationDeclined, time.Now().UTC())
	req.NoError(err)
	req.True(resolved)
	resolved, err = invitations.Resolve(first.ID, models.InvitationAccepted, time.Now().UTC())
	req.NoError(err)
	req.False(resolved)

	ok, err = invitations.CreatePending(&models.Invitation{RoomID: room.ID, InviterID: users[0].ID, InviteeID: users[1].ID})
	req.NoError(err)
	req.True(ok)

	var pending int64
	req.NoError(db.Model(&models.Invitation{}).Where("status = ?", models.InvitationPending).Count(&pending).Error)
	req.EqualValues(1, pending)
}
