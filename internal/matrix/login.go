package matrix

import (
	"context"
	"fmt"

	"maunium.net/go/mautrix"
)

// Credentials is the result of a successful login.
type Credentials struct {
	UserID      string
	AccessToken string
	DeviceID    string
}

// Login authenticates with a password and returns the new credentials.
// The client itself is not modified; build a new one with WithAccessToken.
func (c *Client) Login(ctx context.Context, user, password, deviceName string) (*Credentials, error) {
	resp, err := c.cli.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: user,
		},
		Password:                 password,
		InitialDeviceDisplayName: deviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log in as %s: %w", user, err)
	}
	if resp.AccessToken == "" || resp.UserID == "" {
		return nil, ErrNoCredentials
	}
	return &Credentials{
		UserID:      string(resp.UserID),
		AccessToken: resp.AccessToken,
		DeviceID:    string(resp.DeviceID),
	}, nil
}
