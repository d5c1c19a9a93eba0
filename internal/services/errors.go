package services

import (
	"errors"
	"fmt"

	"github.com/Wal-20/roomchat/internal/repositories"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotMember = errors.New("user is not a member of the room")
	ErrNotAdmin  = errors.New("user is not an admin of the room")

	ErrAlreadyMember      = errors.New("user is already a member of the room")
	ErrRoomPrivate        = errors.New("room is private")
	ErrInvitationPending  = errors.New("an invitation is already pending for this user")
	ErrInvitationResolved = errors.New("invitation is no longer pending")
	ErrLastAdmin          = errors.New("cannot leave room, you may be the only admin")

	ErrRoomNotFound       = errors.New("room not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrMessageNotFound    = errors.New("message not found")

	ErrInvalidInput = errors.New("invalid input")
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthorization
	KindConflict
	KindNotFound
	KindInvalid
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotAdmin):
		return KindAuthorization
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrRoomPrivate),
		errors.Is(err, ErrInvitationPending), errors.Is(err, ErrInvitationResolved),
		errors.Is(err, ErrLastAdmin):
		return KindConflict
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvitationNotFound), errors.Is(err, ErrMessageNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalid
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return KindTransient
	default:
		return KindInternal
	}
}

// Retryable reports whether the same request may succeed if sent again unchanged.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Errorf("%w: %s failed on %s", ErrInvalidInput, f.Field(), f.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
