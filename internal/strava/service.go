package strava

import (
	"time"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

// Service bundles the source side of a sync run: credential refresh,
// window listing and sample materialization, all backed by one SDK.
type Service struct {
	Tokens       *TokenSource
	Lister       *Lister
	Materializer *Materializer
}

type ServiceConfig struct {
	RefreshToken string
	PageSize     int
	ExpiryMargin time.Duration
}

func NewService(stravaSDK sdk.StravaSDK, config ServiceConfig) *Service {
	return &Service{
		Tokens:       NewTokenSource(stravaSDK, config.RefreshToken, config.ExpiryMargin),
		Lister:       NewLister(stravaSDK, config.PageSize),
		Materializer: NewMaterializer(stravaSDK),
	}
}
