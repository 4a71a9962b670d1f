package sdk

import "time"

// Tokens is the token endpoint response. The API rotates the refresh
// token on every exchange, so the returned value must replace the one
// that was sent.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
}

// Activity is a summary entry from the athlete activity listing. Sample
// level data is fetched separately per activity.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	StartDate          time.Time `json:"start_date"`
	ElapsedTime        int64     `json:"elapsed_time"`
	MovingTime         int64     `json:"moving_time"`
	Distance           float64   `json:"distance"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	MaxSpeed           float64   `json:"max_speed"`
	Calories           float64   `json:"calories"`
	AverageHeartrate   float64   `json:"average_heartrate"`
	MaxHeartrate       float64   `json:"max_heartrate"`
	AverageWatts       float64   `json:"average_watts"`
	MaxWatts           float64   `json:"max_watts"`
	AverageCadence     float64   `json:"average_cadence"`
	Description        string    `json:"description"`
	GearID             string    `json:"gear_id"`
}

func (a Activity) Duration() time.Duration {
	return time.Duration(a.ElapsedTime) * time.Second
}

// Stream holds one per-sample series. Series the athlete's device did
// not record are absent from the response, hence the pointer fields on
// StreamSet.
type Stream struct {
	Data []float64 `json:"data"`
}

type LatLngStream struct {
	Data [][2]float64 `json:"data"`
}

type StreamSet struct {
	Time      *Stream       `json:"time,omitempty"`
	LatLng    *LatLngStream `json:"latlng,omitempty"`
	Altitude  *Stream       `json:"altitude,omitempty"`
	Heartrate *Stream       `json:"heartrate,omitempty"`
	Cadence   *Stream       `json:"cadence,omitempty"`
	Watts     *Stream       `json:"watts,omitempty"`
	Temp      *Stream       `json:"temp,omitempty"`
}

// Len is the number of samples on the time axis, which is the axis all
// other series align to.
func (s *StreamSet) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}
