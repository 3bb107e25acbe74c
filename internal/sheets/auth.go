package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// readScope is the only scope the pipeline ever requests: the reader has
// no side effects on the remote.
const readScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

const (
	assertionGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	tokenLifetime      = time.Hour
	expirySlack        = 30 * time.Second
)

// tokenSource exchanges a signed service-account assertion for a bearer
// token and caches it for its lifetime. One tokenSource lives inside one
// Client; there is no process-wide session.
type tokenSource struct {
	creds Credentials
	http  *http.Client
	now   func() time.Time

	token  string
	expiry time.Time
}

func newTokenSource(creds Credentials, httpClient *http.Client) *tokenSource {
	return &tokenSource{
		creds: creds,
		http:  httpClient,
		now:   time.Now,
	}
}

// bearer returns a valid access token, refreshing it when the cached one
// is close to expiry.
func (ts *tokenSource) bearer(ctx context.Context) (string, error) {
	if ts.token != "" && ts.now().Add(expirySlack).Before(ts.expiry) {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", fmt.Errorf("%w: signing assertion: %w", ErrUnavailable, err)
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = ts.now().Add(time.Duration(expiresIn) * time.Second)

	return ts.token, nil
}

func (ts *tokenSource) signAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	now := ts.now()

	claims := jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"scope": readScope,
		"aud":   ts.creds.TokenURI,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	return signed, nil
}

func (ts *tokenSource) exchange(ctx context.Context, assertion string) (token string, expiresIn int, err error) {
	form := url.Values{}
	form.Set("grant_type", assertionGrantType)
	form.Set("assertion", assertion)

	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(
			ctx, http.MethodPost, ts.creds.TokenURI, strings.NewReader(form.Encode()))
		if reqErr != nil {
			return nil, reqErr
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		return req, nil
	}

	status, body, err := doWithRetry(ctx, ts.http, buildReq)
	if err != nil {
		return "", 0, fmt.Errorf("%w: token exchange: %w", ErrUnavailable, err)
	}

	if status != http.StatusOK {
		return "", 0, fmt.Errorf("%w: token exchange: status=%d body=%s", ErrUnavailable, status, snippet(body))
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return "", 0, fmt.Errorf("%w: token response: %w", ErrUnavailable, err)
	}

	if resp.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response has no access_token", ErrUnavailable)
	}

	return resp.AccessToken, resp.ExpiresIn, nil
}
