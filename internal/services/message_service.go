package services

import (
	"context"
	"strings"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/repositories"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type sendInput struct {
	Content string `validate:"required,max=4000"`
}

// Page is a 1-based page of history. Page 1 holds the newest messages.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) offset() int { return (p.Number - 1) * p.Size }

type MessageService struct {
	store *repositories.Store
}

func NewMessageService(store *repositories.Store) *MessageService {
	return &MessageService{store: store}
}

func normalizeContent(content string) (string, error) {
	in := sendInput{Content: strings.TrimSpace(content)}
	if err := validate.Struct(in); err != nil {
		return "", invalid(err)
	}
	return in.Content, nil
}

// SendRoomMessage persists a message from a member of the room.
func (s *MessageService) SendRoomMessage(ctx context.Context, roomID, senderID uint, content string) (*models.Message, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	var msg *models.Message
	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		if _, err := r.Rooms.FindByID(roomID); err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		member, err := r.Members.Exists(roomID, senderID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		sender, err := r.Users.FindByID(senderID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		msg = &models.Message{Content: content, SenderID: senderID, RoomID: &roomID}
		if err := r.Messages.Create(msg); err != nil {
			return err
		}
		msg.Sender = sender
		return nil
	})
	return msg, err
}

// SendDirectMessage persists a private message between two known users.
func (s *MessageService) SendDirectMessage(ctx context.Context, senderID, recipientID uint, content string) (*models.Message, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	var msg *models.Message
	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		sender, err := r.Users.FindByID(senderID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if _, err := r.Users.FindByID(recipientID); err != nil {
			return notFound(err, ErrUserNotFound)
		}
		msg = &models.Message{Content: content, SenderID: senderID, RecipientID: &recipientID}
		if err := r.Messages.Create(msg); err != nil {
			return err
		}
		msg.Sender = sender
		return nil
	})
	return msg, err
}

// GetRoomMessages returns one page of room history in ascending time order.
func (s *MessageService) GetRoomMessages(ctx context.Context, roomID, userID uint, page Page) ([]models.Message, error) {
	page = page.normalize()
	var msgs []models.Message
	err := s.store.View(ctx, func(r repositories.Repos) error {
		if _, err := r.Rooms.FindByID(roomID); err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		member, err := r.Members.Exists(roomID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		msgs, err = r.Messages.ListRoom(roomID, page.offset(), page.Size)
		return err
	})
	return msgs, err
}

// GetPrivateMessages returns one page of the conversation between two users.
func (s *MessageService) GetPrivateMessages(ctx context.Context, userID, otherID uint, page Page) ([]models.Message, error) {
	page = page.normalize()
	var msgs []models.Message
	err := s.store.View(ctx, func(r repositories.Repos) error {
		if _, err := r.Users.FindByID(otherID); err != nil {
			return notFound(err, ErrUserNotFound)
		}
		var err error
		msgs, err = r.Messages.ListPrivate(userID, otherID, page.offset(), page.Size)
		return err
	})
	return msgs, err
}

// MarkRead sets the read flag on a direct message addressed to userID.
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID uint) error {
	return s.store.Transaction(ctx, func(r repositories.Repos) error {
		_, err := r.Messages.MarkRead(messageID, userID)
		return notFound(err, ErrMessageNotFound)
	})
}
