package util

import (
	"net/http"
	"time"
)

const (
	userAgent         = "DiscordBot (forwarder-bot, 1.0)"
	attachmentTimeout = 30 * time.Second
)

// NewAttachmentClient returns the client used to re-download attachments of forwarded messages.
func NewAttachmentClient() *http.Client {
	return &http.Client{
		Timeout:   attachmentTimeout,
		Transport: &userAgentTripper{tripper: http.DefaultTransport},
	}
}

type userAgentTripper struct {
	tripper http.RoundTripper
}

func (t *userAgentTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	return t.tripper.RoundTrip(req)
}
