package backend

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
)

type HttpServerConfig struct {
	Port int `env:"PORT,default=8080"`
}

type HttpClientConfig struct {
	// uploads and login redirects are slow, keep this generous
	Timeout time.Duration `env:"HTTP_CLIENT_TIMEOUT,default=30s"`
}

type StravaAppConfig struct {
	ClientID     string `env:"STRAVA_CLIENT_ID,required"`
	ClientSecret string `env:"STRAVA_CLIENT_SECRET,required"`
	RefreshToken string `env:"STRAVA_REFRESH_TOKEN,required"`
	// BaseURL overrides the public API root, useful against a stub
	BaseURL           string        `env:"STRAVA_BASE_URL"`
	PageSize          int           `env:"STRAVA_PAGE_SIZE,default=50"`
	TokenExpiryMargin time.Duration `env:"STRAVA_TOKEN_EXPIRY_MARGIN,default=5m"`
}

type GarminConfig struct {
	// either an auth token or an email and password pair must be set
	Email              string        `env:"GARMIN_EMAIL"`
	Password           string        `env:"GARMIN_PASSWORD"`
	AuthToken          string        `env:"GARMIN_AUTH_TOKEN"`
	BaseURL            string        `env:"GARMIN_BASE_URL"`
	SSOBaseURL         string        `env:"GARMIN_SSO_BASE_URL"`
	PageSize           int           `env:"GARMIN_PAGE_SIZE,default=100"`
	UploadPollInterval time.Duration `env:"GARMIN_UPLOAD_POLL_INTERVAL,default=3s"`
	UploadPollAttempts int           `env:"GARMIN_UPLOAD_POLL_ATTEMPTS,default=5"`
}

type SyncConfig struct {
	Days              int           `env:"DAYS_TO_SYNC,default=7"`
	Workers           int           `env:"SYNC_WORKER_COUNT,default=2"`
	IndexPadding      time.Duration `env:"SYNC_INDEX_PADDING,default=24h"`
	StartTolerance    time.Duration `env:"SYNC_START_TOLERANCE,default=1m"`
	DurationTolerance time.Duration `env:"SYNC_DURATION_TOLERANCE,default=10s"`
	Schedule          string        `env:"SYNC_SCHEDULE,default=@daily"`
	RunOnce           bool          `env:"SYNC_RUN_ONCE,default=false"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=text"`
}

type Config struct {
	HttpServer HttpServerConfig
	HttpClient HttpClientConfig
	Strava     StravaAppConfig
	Garmin     GarminConfig
	Sync       SyncConfig
	Log        LogConfig
}

func GetConfig(ctx context.Context) *Config {
	var config Config
	if err := envconfig.Process(ctx, &config); err != nil {
		logrus.Fatal(err)
	}
	return &config
}
