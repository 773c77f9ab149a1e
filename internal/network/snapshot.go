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

package network

import "time"

// RouteInfo summarises a train's current route for display/snapshotting.
type RouteInfo struct {
	RouteType        string   `json:"route_type"`
	Stations         []string `json:"stations"`
	TotalDistanceKM  float64  `json:"total_distance_km"`
	TotalTimeMinutes float64  `json:"total_time_minutes"`
}

// TrainSnapshot is the serialised view of one train within a state snapshot.
type TrainSnapshot struct {
	ID              string     `json:"id"`
	TrainType       string     `json:"train_type"`
	Status          string     `json:"status"`
	Priority        int        `json:"priority"`
	SectionStart    string     `json:"section_start"`
	SectionEnd      string     `json:"section_end"`
	CurrentLocation string     `json:"current_location"`
	ActualDelayMins int        `json:"actual_delay_mins"`
	Weather         string     `json:"weather"`
	TrackCondition  string     `json:"track_condition"`
	RouteInfo       *RouteInfo `json:"route_info,omitempty"`
}

// TrackOccupancySnapshot pairs a track ID with the train occupying it, if any.
type TrackOccupancySnapshot struct {
	TrackID string `json:"track_id"`
	TrainID string `json:"train_id,omitempty"`
	Status  string `json:"status"`
}

// Snapshot is the point-in-time state of the digital twin.
type Snapshot struct {
	Trains            []TrainSnapshot          `json:"trains"`
	Platforms         map[string][]string      `json:"platforms"`
	TrackOccupancy    []TrackOccupancySnapshot `json:"track_occupancy"`
	OperationalTracks int                      `json:"operational_tracks"`
	FailedTracks      int                      `json:"failed_tracks"`
	NetworkHealth     string                   `json:"network_health"`
	Timestamp         time.Time                `json:"timestamp"`
}

// ETARecord is one train's projected arrival, as produced by
// GetAllTrainETAs and consumed by the conflict detector.
type ETARecord struct {
	TrainID        string
	TrainType      string
	Priority       int
	Destination    string
	ETA            time.Time
	TotalDelayMins int
	Weather        string
	TrackCondition string
	TimeOfDay      string
}
