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

package scheduledoc

import (
	"encoding/json"
	"fmt"

	"github.com/tracktitans/railcore/internal/trains"
)

// RouteStopDoc is one stop in the enhanced schedule form's Route array.
type RouteStopDoc struct {
	StationID     string `json:"Station_ID"`
	ArrivalTime   string `json:"Arrival_Time"`
	DepartureTime string `json:"Departure_Time"`
}

// TrainDoc covers both the legacy flat schedule record and the enhanced
// Route-array form; exactly one of (Section_Start/Section_End) or Route is
// expected to be populated.
type TrainDoc struct {
	TrainID                  string         `json:"Train_ID"`
	SectionStart             string         `json:"Section_Start"`
	SectionEnd               string         `json:"Section_End"`
	ScheduledDepartureTime   string         `json:"Scheduled_Departure_Time"`
	ScheduledArrivalTime     string         `json:"Scheduled_Arrival_Time"`
	Route                    []RouteStopDoc `json:"Route,omitempty"`
	TrainType                string         `json:"Train_Type,omitempty"`
	DayOfWeek                string         `json:"Day_of_Week,omitempty"`
	TimeOfDay                string         `json:"Time_of_Day,omitempty"`
	Weather                  string         `json:"Weather,omitempty"`
	TrackCondition           string         `json:"Track_Condition,omitempty"`
	InitialReportedDelayMins int            `json:"Initial_Reported_Delay_Mins,omitempty"`
	ActualDelayMins          int            `json:"Actual_Delay_Mins,omitempty"`
}

// DecodeSchedule unmarshals an ordered list of schedule records, normalising
// both the legacy flat form and the enhanced Route-array form into
// trains.Input. For the enhanced form, section endpoints and scheduled
// times are taken from the first/last entries of Route.
func DecodeSchedule(data []byte) ([]trains.Input, error) {
	var docs []TrainDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode schedule document: %w", err)
	}

	out := make([]trains.Input, 0, len(docs))
	for _, d := range docs {
		in, err := normalise(d)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func normalise(d TrainDoc) (trains.Input, error) {
	start, end := d.SectionStart, d.SectionEnd
	depart, arrive := d.ScheduledDepartureTime, d.ScheduledArrivalTime

	if len(d.Route) > 0 {
		start = d.Route[0].StationID
		end = d.Route[len(d.Route)-1].StationID
		depart = d.Route[0].DepartureTime
		arrive = d.Route[len(d.Route)-1].ArrivalTime
	}

	if d.TrainID == "" || start == "" || end == "" {
		return trains.Input{}, fmt.Errorf("schedule record missing train_id or section endpoints")
	}

	return trains.Input{
		ID:                       d.TrainID,
		TrainType:                d.TrainType,
		SectionStart:             start,
		SectionEnd:               end,
		ScheduledDepartureTime:   depart,
		ScheduledArrivalTime:     arrive,
		DayOfWeek:                d.DayOfWeek,
		TimeOfDay:                d.TimeOfDay,
		Weather:                  d.Weather,
		TrackCondition:           d.TrackCondition,
		InitialReportedDelayMins: d.InitialReportedDelayMins,
		ActualDelayMins:          d.ActualDelayMins,
	}, nil
}

// PersistedTrainRecord is the shape emitted by EncodeSchedule: current
// status, delay, route summary and conditions, suitable for feeding a
// downstream simulator.
type PersistedTrainRecord struct {
	TrainID         string   `json:"Train_ID"`
	TrainType       string   `json:"Train_Type"`
	SectionStart    string   `json:"Section_Start"`
	SectionEnd      string   `json:"Section_End"`
	Status          string   `json:"Status"`
	ActualDelayMins int      `json:"Actual_Delay_Mins"`
	Weather         string   `json:"Weather"`
	TrackCondition  string   `json:"Track_Condition"`
	CurrentRoute    []string `json:"Current_Route,omitempty"`
}

// EncodeSchedule serialises persisted train records back to JSON bytes.
func EncodeSchedule(records []PersistedTrainRecord) ([]byte, error) {
	return json.MarshalIndent(records, "", "  ")
}

// FromTrains converts live train state into the persisted record form.
func FromTrains(ts []*trains.Train) []PersistedTrainRecord {
	out := make([]PersistedTrainRecord, 0, len(ts))
	for _, t := range ts {
		rec := PersistedTrainRecord{
			TrainID:         t.ID,
			TrainType:       t.TrainType,
			SectionStart:    t.SectionStart,
			SectionEnd:      t.SectionEnd,
			Status:          t.Status,
			ActualDelayMins: t.ActualDelayMins,
			Weather:         t.Weather,
			TrackCondition:  t.TrackCondition,
		}
		if t.CurrentRoute != nil {
			rec.CurrentRoute = t.CurrentRoute.Stations
		}
		out = append(out, rec)
	}
	return out
}
