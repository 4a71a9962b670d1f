package backend

import (
	"context"
	"errors"

	"github.com/nmiodice/strava-garmin-sync/internal/fingerprint"
	"github.com/nmiodice/strava-garmin-sync/internal/garmin"
	"github.com/nmiodice/strava-garmin-sync/internal/locks"
	"github.com/nmiodice/strava-garmin-sync/internal/state"
	"github.com/nmiodice/strava-garmin-sync/internal/strava"
	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
	"github.com/nmiodice/strava-garmin-sync/internal/syncer"
)

type Dependencies struct {
	Strava  *strava.Service
	Garmin  garmin.Client
	Engine  *syncer.Engine
	Tracker *state.Tracker
}

func GetDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	if config.Garmin.AuthToken == "" && (config.Garmin.Email == "" || config.Garmin.Password == "") {
		return nil, errors.New("either GARMIN_AUTH_TOKEN or GARMIN_EMAIL and GARMIN_PASSWORD must be set")
	}

	stravaSDK := sdk.NewStravaSDK(sdk.StravaSDKConfig{
		BaseURL:      config.Strava.BaseURL,
		Timeout:      config.HttpClient.Timeout,
		ClientID:     config.Strava.ClientID,
		ClientSecret: config.Strava.ClientSecret,
	})

	stravaService := strava.NewService(stravaSDK, strava.ServiceConfig{
		RefreshToken: config.Strava.RefreshToken,
		PageSize:     config.Strava.PageSize,
		ExpiryMargin: config.Strava.TokenExpiryMargin,
	})

	garminClient := garmin.NewClient(garmin.ClientConfig{
		Email:        config.Garmin.Email,
		Password:     config.Garmin.Password,
		AuthToken:    config.Garmin.AuthToken,
		BaseURL:      config.Garmin.BaseURL,
		SSOBaseURL:   config.Garmin.SSOBaseURL,
		Timeout:      config.HttpClient.Timeout,
		PageSize:     config.Garmin.PageSize,
		PollInterval: config.Garmin.UploadPollInterval,
		PollAttempts: config.Garmin.UploadPollAttempts,
	})

	tracker := state.NewTracker()
	engine := syncer.NewEngine(syncer.Dependencies{
		Tokens:       stravaService.Tokens,
		Lister:       stravaService.Lister,
		Materializer: stravaService.Materializer,
		Destination:  garminClient,
		Lock:         locks.NewRunLock(),
		Tracker:      tracker,
	}, syncer.Config{
		Workers:      config.Sync.Workers,
		IndexPadding: config.Sync.IndexPadding,
		Tolerances: fingerprint.Tolerances{
			Start:    config.Sync.StartTolerance,
			Duration: config.Sync.DurationTolerance,
		},
	})

	return &Dependencies{
		Strava:  stravaService,
		Garmin:  garminClient,
		Engine:  engine,
		Tracker: tracker,
	}, nil
}
