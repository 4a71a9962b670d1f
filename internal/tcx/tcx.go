// Package tcx renders materialized activities as Training Center XML
// documents suitable for the destination's import service.
package tcx

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

const (
	tcxNamespace       = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	extensionNamespace = "http://www.garmin.com/xmlschemas/ActivityExtension/v2"
	timeLayout         = "2006-01-02T15:04:05Z"
)

// sports maps source activity types onto the sports the TCX schema
// accepts. Types without an entry are refused rather than guessed, a
// misfiled sport is worse than a skipped activity.
var sports = map[string]string{
	"Ride":        "Biking",
	"Run":         "Running",
	"Swim":        "Swimming",
	"Walk":        "Walking",
	"Hike":        "Hiking",
	"VirtualRide": "Biking",
	"Workout":     "Other",
}

// Filename names the upload document for one activity.
func Filename(activityID int64) string {
	return fmt.Sprintf("activity_%d.tcx", activityID)
}

// Convert renders one activity and its streams as a TCX document. All
// per-sample series align to the time axis; a series shorter than the
// time axis simply stops contributing elements, nothing is interpolated.
func Convert(activity sdk.Activity, streams *sdk.StreamSet) ([]byte, error) {
	sport, ok := sports[activity.Type]
	if !ok {
		return nil, &ConversionError{
			Reason: ConversionReasonUnsupportedType,
			Err:    fmt.Errorf("no sport for activity type %q", activity.Type),
		}
	}
	if streams.Len() == 0 {
		return nil, &ConversionError{
			Reason: ConversionReasonMalformed,
			Err:    errors.New("no time axis to place samples on"),
		}
	}

	start := activity.StartDate.UTC()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("TrainingCenterDatabase")
	root.CreateAttr("xmlns", tcxNamespace)
	root.CreateAttr("xmlns:ns3", extensionNamespace)

	node := root.CreateElement("Activities").CreateElement("Activity")
	node.CreateAttr("Sport", sport)
	node.CreateElement("Id").SetText(start.Format(timeLayout))
	node.CreateElement("Notes").SetText(notes(activity))

	lap := node.CreateElement("Lap")
	lap.CreateAttr("StartTime", start.Format(timeLayout))
	lap.CreateElement("TotalTimeSeconds").SetText(strconv.FormatInt(activity.ElapsedTime, 10))
	lap.CreateElement("DistanceMeters").SetText(formatFloat(activity.Distance))
	lap.CreateElement("MaximumSpeed").SetText(formatFloat(activity.MaxSpeed))
	lap.CreateElement("Calories").SetText(formatInt(activity.Calories))

	if activity.AverageHeartrate > 0 {
		lap.CreateElement("AverageHeartRateBpm").CreateElement("Value").SetText(formatInt(activity.AverageHeartrate))
		lap.CreateElement("MaximumHeartRateBpm").CreateElement("Value").SetText(formatInt(activity.MaxHeartrate))
	}

	lap.CreateElement("Intensity").SetText("Active")
	lap.CreateElement("TriggerMethod").SetText("Manual")

	if activity.AverageWatts > 0 || activity.AverageCadence > 0 {
		lx := lap.CreateElement("Extensions").CreateElement("ns3:LX")
		if activity.AverageWatts > 0 {
			lx.CreateElement("ns3:AvgWatts").SetText(formatInt(activity.AverageWatts))
			lx.CreateElement("ns3:MaxWatts").SetText(formatInt(activity.MaxWatts))
		}
		if activity.AverageCadence > 0 {
			lx.CreateElement("ns3:AvgRunCadence").SetText(formatInt(activity.AverageCadence))
		}
	}

	track := lap.CreateElement("Track")
	for i, offset := range streams.Time.Data {
		point := track.CreateElement("Trackpoint")
		point.CreateElement("Time").SetText(start.Add(time.Duration(offset) * time.Second).Format(timeLayout))

		if streams.LatLng != nil && i < len(streams.LatLng.Data) {
			position := point.CreateElement("Position")
			position.CreateElement("LatitudeDegrees").SetText(formatFloat(streams.LatLng.Data[i][0]))
			position.CreateElement("LongitudeDegrees").SetText(formatFloat(streams.LatLng.Data[i][1]))
		}
		if altitude, ok := sample(streams.Altitude, i); ok {
			point.CreateElement("AltitudeMeters").SetText(formatFloat(altitude))
		}
		if heartrate, ok := sample(streams.Heartrate, i); ok {
			point.CreateElement("HeartRateBpm").CreateElement("Value").SetText(formatInt(heartrate))
		}
		if cadence, ok := sample(streams.Cadence, i); ok {
			point.CreateElement("Cadence").SetText(formatInt(cadence))
		}

		watts, hasWatts := sample(streams.Watts, i)
		temp, hasTemp := sample(streams.Temp, i)
		if hasWatts || hasTemp {
			tpx := point.CreateElement("Extensions").CreateElement("ns3:TPX")
			if hasWatts {
				tpx.CreateElement("ns3:Watts").SetText(formatInt(watts))
			}
			if hasTemp {
				tpx.CreateElement("ns3:AirTemperature").SetText(formatInt(temp))
			}
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// notes folds the free text fields into the one Notes element the
// schema offers.
func notes(activity sdk.Activity) string {
	text := activity.Name
	if activity.Description != "" {
		text += " - " + activity.Description
	}
	if activity.GearID != "" {
		text += " | Gear: " + activity.GearID
	}
	return text
}

func sample(stream *sdk.Stream, i int) (float64, bool) {
	if stream == nil || i >= len(stream.Data) {
		return 0, false
	}
	return stream.Data[i], true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v float64) string {
	return strconv.Itoa(int(v))
}
