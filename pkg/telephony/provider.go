package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Provider places outbound calls with the upstream voice service.
// Signaling stays on the provider's side; the backend only needs the
// opaque call identifier back.
type Provider interface {
	Dial(ctx context.Context, from, to string) (*DialResult, error)
}

type DialResult struct {
	CallSID string
	Status  string
}

// TwilioProvider talks to the Twilio REST API directly over HTTP.
type TwilioProvider struct {
	accountSID string
	authToken  string
	client     *http.Client
}

func NewTwilioProvider(accountSID, authToken string) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		client:     &http.Client{},
	}
}

func (p *TwilioProvider) Dial(ctx context.Context, from, to string) (*DialResult, error) {
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Calls.json", p.accountSID)

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach voice provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("voice provider returned status %d", resp.StatusCode)
	}

	var body struct {
		Sid    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("could not decode provider response: %w", err)
	}

	return &DialResult{CallSID: body.Sid, Status: body.Status}, nil
}
