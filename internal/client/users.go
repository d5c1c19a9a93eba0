package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Wal-20/roomchat/internal/models"
)

func (c *APIClient) GetMe(ctx context.Context) (models.User, error) {
	body, err := c.get(ctx, "/users/me")
	return decode[models.User](body, err, "user")
}

func (c *APIClient) GetOnlineUsers(ctx context.Context) ([]models.User, error) {
	body, err := c.get(ctx, "/users/online")
	return decode[[]models.User](body, err, "users")
}

func (c *APIClient) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	body, err := c.get(ctx, "/users/search?q="+url.QueryEscape(term))
	return decode[[]models.User](body, err, "users")
}

func (c *APIClient) GetPendingInvitations(ctx context.Context) ([]models.Invitation, error) {
	body, err := c.get(ctx, "/users/me/invitations")
	return decode[[]models.Invitation](body, err, "invitations")
}

func (c *APIClient) GetInvitation(ctx context.Context, invitationID uint) (models.Invitation, error) {
	body, err := c.get(ctx, fmt.Sprintf("/invitations/%d", invitationID))
	return decode[models.Invitation](body, err, "invitation")
}

func (c *APIClient) GetPrivateMessages(ctx context.Context, otherID uint, page, pageSize int) ([]models.Message, error) {
	body, err := c.get(ctx, fmt.Sprintf("/messages/private/%d?page=%d&pageSize=%d", otherID, page, pageSize))
	return decode[[]models.Message](body, err, "messages")
}

func (c *APIClient) MarkRead(ctx context.Context, messageID uint) error {
	_, err := c.post(ctx, fmt.Sprintf("/messages/%d/read", messageID), nil)
	return err
}
