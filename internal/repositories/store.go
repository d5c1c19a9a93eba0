package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrStoreUnavailable is returned once a transient store failure survived every retry.
var ErrStoreUnavailable = errors.New("store temporarily unavailable")

const (
	DefaultTimeout  = 5 * time.Second
	DefaultAttempts = 3
)

// Repos groups the repositories bound to one database handle, which is either the
// base connection or an open transaction.
type Repos struct {
	Rooms       RoomRepository
	Members     MemberRepository
	Messages    MessageRepository
	Invitations InvitationRepository
	Users       UserRepository
}

func newRepos(db *gorm.DB) Repos {
	return Repos{
		Rooms:       NewRoomRepository(db),
		Members:     NewMemberRepository(db),
		Messages:    NewMessageRepository(db),
		Invitations: NewInvitationRepository(db),
		Users:       NewUserRepository(db),
	}
}

// Store runs repository work with a bounded timeout and retries transient failures.
type Store struct {
	db       *gorm.DB
	log      *slog.Logger
	timeout  time.Duration
	attempts uint
}

type StoreOption func(*Store)

func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithAttempts(n uint) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func NewStore(db *gorm.DB, log *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{db: db, log: log, timeout: DefaultTimeout, attempts: DefaultAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn inside a database transaction. The transaction is detached from
// ctx cancellation: once started it commits or rolls back within the store timeout, so
// a caller going away never leaves it half applied.
func (s *Store) Transaction(ctx context.Context, fn func(r Repos) error) error {
	return s.retry(ctx, "transaction", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(newRepos(tx))
		})
	})
}

// View runs read-only work outside a transaction.
func (s *Store) View(ctx context.Context, fn func(r Repos) error) error {
	return s.retry(ctx, "view", func(ctx context.Context) error {
		return fn(newRepos(s.db.WithContext(ctx)))
	})
}

func (s *Store) retry(ctx context.Context, op string, run func(ctx context.Context) error) error {
	detached := context.WithoutCancel(ctx)
	attempt := 0
	_, err := backoff.Retry(detached, func() (struct{}, error) {
		attempt++
		runCtx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()
		err := run(runCtx)
		if err == nil {
			return struct{}{}, nil
		}
		if !IsTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		s.log.Warn("Transient store failure", "op", op, "attempt", attempt, "error", err)
		return struct{}{}, err
	},
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(s.attempts),
	)
	if err != nil && IsTransient(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

// IsTransient reports whether err is a lock, deadlock or timeout failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213: // lock wait timeout, deadlock
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization failure, deadlock, lock not available
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
