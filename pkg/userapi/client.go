// Package userapi is the client for the external user service.
package userapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/tradecart/pkg/upstream"
)

const internalKeyHeader = "X-Internal-API-Key"

// Profile is the subset of a user record the marketplace relies on.
type Profile struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	GSTNumber    string `json:"gst_number"`
}

// Email is a notification request for POST /internal/send-email.
type Email struct {
	To      string `json:"recipient_email"`
	Subject string `json:"subject"`
	HTML    string `json:"html_body"`
}

type Client struct {
	api         *upstream.Client
	internalKey string
}

func NewClient(api *upstream.Client, internalKey string) *Client {
	return &Client{api: api, internalKey: internalKey}
}

// Me returns the profile of the user owning authorization.
func (c *Client) Me(ctx context.Context, authorization string) (*Profile, error) {
	var p Profile
	if err := c.api.Do(ctx, http.MethodGet, "/me", upstream.Bearer(authorization), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Lookup fetches a profile by id using the service key.
func (c *Client) Lookup(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	path := "/internal/user/" + url.PathEscape(userID)
	if err := c.api.Do(ctx, http.MethodGet, path, c.internalHeader(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SendEmail(ctx context.Context, e Email) error {
	return c.api.Do(ctx, http.MethodPost, "/internal/send-email", c.internalHeader(), e, nil)
}

func (c *Client) internalHeader() http.Header {
	h := http.Header{}
	h.Set(internalKeyHeader, c.internalKey)
	return h
}
