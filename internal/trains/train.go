// Copyright (C) 2008-2019 by Nicolas Piganeau and the TS2 TEAM
// (See AUTHORS file)
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program; if not, write to the
// Free Software Foundation, Inc.,
// 59 Temple Place - Suite 330, Boston, MA  02111-1307, USA.

// Package trains models a single train's schedule, live state and the route
// slots assigned to it by the network.
package trains

import (
	"fmt"
	"strings"
	"time"

	"github.com/tracktitans/railcore/internal/routing"
)

const timeLayout = "2006-01-02 15:04:05"

// Input is the normalised set of fields needed to construct a Train,
// produced by the schedule loader from either the legacy flat schema or the
// enhanced Route-array schema (see the schedule document format).
type Input struct {
	ID                       string
	TrainType                string
	SectionStart             string
	SectionEnd               string
	ScheduledDepartureTime   string
	ScheduledArrivalTime     string
	DayOfWeek                string
	TimeOfDay                string
	Weather                  string
	TrackCondition           string
	InitialReportedDelayMins int
	ActualDelayMins          int
}

var basePriority = map[string]int{
	"Express":   1,
	"Passenger": 3,
	"Local":     4,
	"Goods":     5,
}

func isPeak(timeOfDay string) bool {
	return timeOfDay == "Morning_Peak" || timeOfDay == "Evening_Peak"
}

// Train represents one train's schedule, current state and assigned routes.
type Train struct {
	ID                       string
	TrainType                string
	SectionStart             string
	SectionEnd               string
	ScheduledDepartureTime   string
	ScheduledArrivalTime     string
	DayOfWeek                string
	TimeOfDay                string
	Weather                  string
	TrackCondition           string
	Status                   string
	InitialReportedDelayMins int
	ActualDelayMins          int
	CurrentLocation          string
	Priority                 int

	PrimaryRoute       *routing.Route
	AlternativeRoutes  []*routing.Route
	CurrentRoute       *routing.Route
}

// New constructs a Train from a normalised schedule input. Priority is
// derived once at construction per the base-type table, bumped by one at
// peak hours and clamped to a minimum of 1.
func New(in Input) *Train {
	trainType := in.TrainType
	if trainType == "" {
		trainType = "Express"
	}
	weather := in.Weather
	if weather == "" {
		weather = "Clear"
	}
	trackCondition := in.TrackCondition
	if trackCondition == "" {
		trackCondition = "Normal"
	}
	dayOfWeek := in.DayOfWeek
	if dayOfWeek == "" {
		dayOfWeek = "Monday"
	}
	timeOfDay := in.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = "Morning_Peak"
	}

	priority, ok := basePriority[trainType]
	if !ok {
		priority = 3
	}
	if isPeak(timeOfDay) {
		priority--
		if priority < 1 {
			priority = 1
		}
	}

	return &Train{
		ID:                       in.ID,
		TrainType:                trainType,
		SectionStart:             in.SectionStart,
		SectionEnd:               in.SectionEnd,
		ScheduledDepartureTime:   in.ScheduledDepartureTime,
		ScheduledArrivalTime:     in.ScheduledArrivalTime,
		DayOfWeek:                dayOfWeek,
		TimeOfDay:                timeOfDay,
		Weather:                  weather,
		TrackCondition:           trackCondition,
		Status:                   "On-Time",
		InitialReportedDelayMins: in.InitialReportedDelayMins,
		ActualDelayMins:          in.ActualDelayMins,
		CurrentLocation:          in.SectionStart,
		Priority:                 priority,
	}
}

// Clone returns an independent copy of the train. Route slots are immutable
// and shared by reference with the original.
func (t *Train) Clone() *Train {
	clone := *t
	clone.AlternativeRoutes = append([]*routing.Route(nil), t.AlternativeRoutes...)
	return &clone
}

// IsCancelled reports whether the train has been cancelled and should be
// excluded from future conflict detection.
func (t *Train) IsCancelled() bool {
	return strings.HasPrefix(t.Status, "Cancelled")
}

// ETA is the result of projecting a train's arrival at its destination.
type ETA struct {
	Destination    string
	ScheduledTime  time.Time
	Time           time.Time
	TotalDelayMins int
	Valid          bool // false when the scheduled arrival could not be parsed
}

// GetETAAtDestination projects the scheduled arrival plus accumulated delay
// plus environmental adjustments (+5 Rain/Fog, +10 Maintenance). If the
// scheduled timestamp cannot be parsed, the ETA itself is absent but the
// delay total is still reported.
func (t *Train) GetETAAtDestination() ETA {
	weatherDelay := 0
	if t.Weather == "Rain" || t.Weather == "Fog" {
		weatherDelay = 5
	}
	trackDelay := 0
	if t.TrackCondition == "Maintenance" {
		trackDelay = 10
	}
	totalDelay := t.ActualDelayMins + weatherDelay + trackDelay

	scheduled, err := time.Parse(timeLayout, t.ScheduledArrivalTime)
	if err != nil {
		return ETA{Destination: t.SectionEnd, TotalDelayMins: totalDelay, Valid: false}
	}
	return ETA{
		Destination:    t.SectionEnd,
		ScheduledTime:  scheduled,
		Time:           scheduled.Add(time.Duration(totalDelay) * time.Minute),
		TotalDelayMins: totalDelay,
		Valid:          true,
	}
}

// SetRoutes stores the primary and alternative routes and makes primary the
// current route.
func (t *Train) SetRoutes(primary *routing.Route, alternatives []*routing.Route) {
	t.PrimaryRoute = primary
	t.AlternativeRoutes = alternatives
	t.CurrentRoute = primary
}

// ApplyDelay adds to the accumulated delay and tags the status.
func (t *Train) ApplyDelay(mins int, reason string) {
	t.ActualDelayMins += mins
	if reason != "" {
		t.Status = fmt.Sprintf("Delayed(%s)", reason)
	} else {
		t.Status = "Delayed"
	}
}

// ApplyHalt is a delay with a halt-tagged status.
func (t *Train) ApplyHalt(mins int, reason string) {
	t.ActualDelayMins += mins
	if reason != "" {
		t.Status = fmt.Sprintf("Halted(%s)", reason)
	} else {
		t.Status = "Halted"
	}
}

// ApplyCancellation marks the train cancelled; it is excluded from future
// conflict detection.
func (t *Train) ApplyCancellation(reason string) {
	t.Status = fmt.Sprintf("Cancelled(%s)", reason)
}

// ApplySpeedAdjustment applies a multiplicative speed factor. factor <= 0 is
// an invalid parameter and is rejected with state unchanged.
func (t *Train) ApplySpeedAdjustment(factor float64, reason string) error {
	if factor <= 0 {
		return fmt.Errorf("invalid speed factor %.2f: must be > 0", factor)
	}
	switch {
	case factor > 1:
		mins := int((factor - 1.0) * 60)
		t.ActualDelayMins += mins
		t.Status = "Speed Reduced"
	case factor < 1:
		mins := int((1.0 - factor) * 60)
		t.ActualDelayMins -= mins
		if t.ActualDelayMins < 0 {
			t.ActualDelayMins = 0
		}
		t.Status = "Speed Increased"
	}
	return nil
}

// SwitchToAlternativeRoute selects alternative route i as the current route,
// adding any additional travel time over the primary route as delay. Fails
// if i is out of range.
func (t *Train) SwitchToAlternativeRoute(i int) error {
	if i < 0 || i >= len(t.AlternativeRoutes) {
		return fmt.Errorf("alternative route index %d out of range (have %d)", i, len(t.AlternativeRoutes))
	}
	alt := t.AlternativeRoutes[i]
	t.CurrentRoute = alt
	primaryTime := 0.0
	if t.PrimaryRoute != nil {
		primaryTime = t.PrimaryRoute.TotalTimeMinutes
	}
	additional := alt.TotalTimeMinutes - primaryTime
	if additional < 0 {
		additional = 0
	}
	t.ActualDelayMins += int(additional)
	t.Status = fmt.Sprintf("Rerouted via %s", alt.RouteType)
	return nil
}
