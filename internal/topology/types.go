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

// Package topology owns the railway network graph: stations, directed
// track edges and their operational status.
package topology

// StationType tags the role a station plays in the network.
type StationType string

const (
	StationJunction StationType = "junction"
	StationTerminal StationType = "terminal"
	StationStandard StationType = "station"
)

// Coordinates is an optional lat/lon pair used by the heuristic pathfinders.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Station is immutable after load.
type Station struct {
	Code            string      `json:"code"`
	Name            string      `json:"name"`
	Type            StationType `json:"type"`
	Platforms       int         `json:"platforms"`
	CapacityPerHour int         `json:"capacity_per_hour"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
}

// HasCoordinates reports whether the station carries a coordinate pair,
// required by the Euclidean heuristic.
func (s *Station) HasCoordinates() bool {
	return s != nil && s.Coordinates != nil
}

// TrackType classifies the physical line a track edge runs on.
type TrackType string

const (
	TrackSingleLine TrackType = "single_line"
	TrackDoubleLine TrackType = "double_line"
)

// TrackPriority is the dispatch priority assigned to a track segment.
type TrackPriority string

const (
	PriorityLow    TrackPriority = "low"
	PriorityMedium TrackPriority = "medium"
	PriorityHigh   TrackPriority = "high"
)

// TrackStatus is the only mutable field of a Track during runtime.
type TrackStatus string

const (
	StatusOperational TrackStatus = "operational"
	StatusDisabled    TrackStatus = "disabled"
)

// Track is a directed edge from From to To, uniquely identified by ID.
type Track struct {
	ID                    string        `json:"track_id"`
	From                  string        `json:"from"`
	To                    string        `json:"to"`
	DistanceKM            float64       `json:"distance_km"`
	TravelTimeMinutes     float64       `json:"travel_time_minutes"`
	TrackType             TrackType     `json:"track_type"`
	CapacityTrainsPerHour int           `json:"capacity_trains_per_hour"`
	Priority              TrackPriority `json:"priority"`
	MaxSpeedKMH           float64       `json:"max_speed_kmh"`

	Status         TrackStatus `json:"status"`
	DisableReason  string      `json:"disable_reason,omitempty"`
	DisabledAt     string      `json:"disabled_at,omitempty"`
	originalStatus TrackStatus
	savedStatus    bool
}

// Clone returns an independent copy of the track suitable for a cloned graph.
func (t Track) Clone() Track {
	return t
}
