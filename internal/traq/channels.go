package traq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// Channel is a public channel as listed by the server. ParentID is nil for
// top-level channels.
type Channel struct {
	ID       string
	Name     string
	ParentID *string
	Children []string
	Archived bool
	Force    bool
	Topic    string
}

// channelResponse mirrors the traQ Channel JSON exactly.
// Unexported: callers use Channel via toChannel().
type channelResponse struct {
	ID       string   `json:"id"`
	ParentID *string  `json:"parentId"`
	Archived bool     `json:"archived"`
	Force    bool     `json:"force"`
	Topic    string   `json:"topic"`
	Name     string   `json:"name"`
	Children []string `json:"children"`
}

type channelListResponse struct {
	Public []channelResponse `json:"public"`
}

type subscribeLevelRequest struct {
	Level int `json:"level"`
}

func (r *channelResponse) toChannel() Channel {
	return Channel{
		ID:       r.ID,
		Name:     r.Name,
		ParentID: r.ParentID,
		Children: r.Children,
		Archived: r.Archived,
		Force:    r.Force,
		Topic:    r.Topic,
	}
}

// Channels returns every public channel. DM channels are not requested.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	c.logger.Info("listing channels")

	resp, err := c.Do(ctx, http.MethodGet, "/channels?include-dm=false", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list channelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("traq: decoding channel list: %w", err)
	}

	channels := make([]Channel, 0, len(list.Public))
	for i := range list.Public {
		channels = append(channels, list.Public[i].toChannel())
	}

	c.logger.Info("listed channels", slog.Int("count", len(channels)))

	return channels, nil
}

// SetSubscriptionLevel sets the authenticated user's subscription level for
// one channel: 0 (none), 1 (subscribed) or 2 (notified).
func (c *Client) SetSubscriptionLevel(ctx context.Context, channelID string, level int) error {
	c.logger.Debug("setting subscription level",
		slog.String("channel_id", channelID),
		slog.Int("level", level),
	)

	body, err := json.Marshal(subscribeLevelRequest{Level: level})
	if err != nil {
		return fmt.Errorf("traq: encoding subscription request: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPut, "/users/me/subscriptions/"+url.PathEscape(channelID), body)
	if err != nil {
		return err
	}

	resp.Body.Close()

	return nil
}
