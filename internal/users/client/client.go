package client

import (
	"context"
	"net/http"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/apiclient"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/users/domain"
)

const userPath = "user"

// Client is the user API-key resource client.
type Client struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// RequestAPIKey asks the backend to issue a new key for email.
func (c *Client) RequestAPIKey(ctx context.Context, email string) error {
	return c.api.Do(ctx, apiclient.Request{
		Op:     "user.request_api_key",
		Method: http.MethodPost,
		Path:   []string{userPath, "request-api-key"},
		Body:   domain.APIKeyRequest{Email: email},
	}, nil)
}

// SaveAPIKey stores key as the current user's active key, replacing any
// previous one.
func (c *Client) SaveAPIKey(ctx context.Context, key string) error {
	return c.api.Do(ctx, apiclient.Request{
		Op:     "user.save_api_key",
		Method: http.MethodPost,
		Path:   []string{userPath, "save-api-key"},
		Body:   domain.SaveAPIKeyRequest{APIKey: key},
	}, nil)
}

// GetAPIKey returns the current user's active key.
func (c *Client) GetAPIKey(ctx context.Context) (*domain.APIKey, error) {
	var k domain.APIKey
	err := c.api.Do(ctx, apiclient.Request{
		Op:     "user.get_api_key",
		Method: http.MethodGet,
		Path:   []string{userPath, "get-api-key"},
	}, &k)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
