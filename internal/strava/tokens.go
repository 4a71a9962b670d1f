package strava

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

// TokenSource yields a valid access token, refreshing through the SDK
// when the cached token is inside the expiry margin. The API rotates
// refresh tokens on use; the source keeps the newest one and surfaces
// the rotation so the operator can update the stored credential.
type TokenSource struct {
	sdk          sdk.StravaSDK
	expiryMargin time.Duration

	mu           sync.Mutex
	initialToken string
	refreshToken string
	tokens       *sdk.Tokens
}

func NewTokenSource(stravaSDK sdk.StravaSDK, refreshToken string, expiryMargin time.Duration) *TokenSource {
	return &TokenSource{
		sdk:          stravaSDK,
		expiryMargin: expiryMargin,
		initialToken: refreshToken,
		refreshToken: refreshToken,
	}
}

func (ts *TokenSource) AccessToken(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.tokens != nil && time.Until(time.Unix(ts.tokens.ExpiresAt, 0)) > ts.expiryMargin {
		return ts.tokens.AccessToken, nil
	}

	tokens, err := ts.sdk.RefreshAuthToken(ctx, ts.refreshToken)
	if err != nil {
		return "", classifyAuthError(err)
	}

	ts.tokens = tokens
	if tokens.RefreshToken != "" && tokens.RefreshToken != ts.refreshToken {
		logrus.Warn("the source rotated the refresh token, update the stored credential")
		ts.refreshToken = tokens.RefreshToken
	}

	return tokens.AccessToken, nil
}

// RotatedRefreshToken returns the newest refresh token when it differs
// from the one the source was constructed with.
func (ts *TokenSource) RotatedRefreshToken() (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.refreshToken != ts.initialToken {
		return ts.refreshToken, true
	}
	return "", false
}

// a 400 or 401 from the token endpoint means the grant itself was
// rejected; everything else already went through the client's retry
// policy and is worth trying again on a later run
func classifyAuthError(err error) error {
	if errors.Is(err, sdk.ErrorBadRequest) || errors.Is(err, sdk.ErrorUnauthorized) {
		return &AuthError{Reason: AuthReasonInvalidGrant, Err: err}
	}
	return &AuthError{Reason: AuthReasonTransient, Err: err}
}
