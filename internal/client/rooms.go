package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Wal-20/roomchat/internal/models"
)

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"isPrivate"`
}

func (c *APIClient) CreateRoom(ctx context.Context, in CreateRoomRequest) (models.Room, error) {
	body, err := c.post(ctx, "/rooms", in)
	return decode[models.Room](body, err, "room")
}

func (c *APIClient) GetPublicRooms(ctx context.Context) ([]models.Room, error) {
	body, err := c.get(ctx, "/rooms/public")
	return decode[[]models.Room](body, err, "rooms")
}

func (c *APIClient) SearchRooms(ctx context.Context, term string) ([]models.Room, error) {
	body, err := c.get(ctx, "/rooms/search?q="+url.QueryEscape(term))
	return decode[[]models.Room](body, err, "rooms")
}

func (c *APIClient) GetRoom(ctx context.Context, roomID uint) (models.Room, error) {
	body, err := c.get(ctx, fmt.Sprintf("/rooms/%d", roomID))
	return decode[models.Room](body, err, "room")
}

func (c *APIClient) GetRoomMembers(ctx context.Context, roomID uint) ([]models.User, error) {
	body, err := c.get(ctx, fmt.Sprintf("/rooms/%d/members", roomID))
	return decode[[]models.User](body, err, "users")
}

// GetRoomMessages returns one page of history, oldest first within the page. Page 1 is the newest.
func (c *APIClient) GetRoomMessages(ctx context.Context, roomID uint, page, pageSize int) ([]models.Message, error) {
	body, err := c.get(ctx, fmt.Sprintf("/rooms/%d/messages?page=%d&pageSize=%d", roomID, page, pageSize))
	return decode[[]models.Message](body, err, "messages")
}

func (c *APIClient) GetUserRooms(ctx context.Context) ([]models.Room, error) {
	body, err := c.get(ctx, "/users/me/rooms")
	return decode[[]models.Room](body, err, "rooms")
}
