package traq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User is the authenticated traQ user.
type User struct {
	ID          string
	Name        string
	DisplayName string
	Bot         bool
}

type meResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Bot         bool   `json:"bot"`
}

// Me returns the user the token belongs to. It doubles as a token check.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("traq: decoding user response: %w", err)
	}

	return &User{
		ID:          me.ID,
		Name:        me.Name,
		DisplayName: me.DisplayName,
		Bot:         me.Bot,
	}, nil
}
