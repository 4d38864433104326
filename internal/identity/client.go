// Package identity integrates with the federated identity provider. The
// provider authenticates users interactively in the browser; this package
// consumes the resulting bearer token to read the signed-in account and its
// group memberships, and resolves those into an internal user profile.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Account is the provider's view of a signed-in user: a stable external id
// plus the directory's current display name and email.
type Account struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// Client calls the identity provider's REST API with a user's bearer token.
// BaseURL points at the provider's versioned endpoint root and is only
// overridden in tests.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Me fetches the signed-in account behind the given bearer token. The
// provider, not the caller, is the authority on who the token belongs to.
func (c *Client) Me(ctx context.Context, bearer string) (Account, error) {
	var body struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := c.get(ctx, "/me", bearer, &body); err != nil {
		return Account{}, err
	}
	email := body.Mail
	if email == "" {
		email = body.UserPrincipalName
	}
	name := body.DisplayName
	if name == "" {
		name = email
	}
	return Account{ExternalID: body.ID, Email: email, DisplayName: name}, nil
}

// Groups fetches the display names of every directory group the signed-in
// account belongs to.
func (c *Client) Groups(ctx context.Context, bearer string) ([]string, error) {
	var body struct {
		Value []struct {
			DisplayName string `json:"displayName"`
		} `json:"value"`
	}
	if err := c.get(ctx, "/me/memberOf", bearer, &body); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(body.Value))
	for _, g := range body.Value {
		if g.DisplayName != "" {
			names = append(names, g.DisplayName)
		}
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider: %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
