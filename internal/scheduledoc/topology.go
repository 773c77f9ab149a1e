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

// Package scheduledoc decodes the topology and schedule document formats
// into the plain Go structs the rest of the core operates on. File I/O
// itself (opening paths, choosing a reader) is the caller's concern; this
// package only unmarshals already-read bytes.
package scheduledoc

import (
	"encoding/json"
	"fmt"

	"github.com/tracktitans/railcore/internal/topology"
)

// StationDoc is the on-disk representation of one station entry.
type StationDoc struct {
	Name            string              `json:"name"`
	Type            string              `json:"type"`
	Platforms       int                 `json:"platforms"`
	CapacityPerHour int                 `json:"capacity_per_hour"`
	Coordinates     *CoordinatesDoc     `json:"coordinates,omitempty"`
}

// CoordinatesDoc is the on-disk lat/lon pair.
type CoordinatesDoc struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TrackDoc is the on-disk representation of one track entry.
type TrackDoc struct {
	From                  string  `json:"from"`
	To                    string  `json:"to"`
	DistanceKM            float64 `json:"distance_km"`
	TravelTimeMinutes     float64 `json:"travel_time_minutes"`
	TrackType             string  `json:"track_type"`
	CapacityTrainsPerHour int     `json:"capacity_trains_per_hour"`
	Priority              string  `json:"priority"`
	MaxSpeedKMH           float64 `json:"max_speed_kmh"`
	Status                string  `json:"status"`
}

// TopologyDoc is the full structured topology document: stations, tracks,
// and an optional route_alternatives hint map that the pathfinder does not
// require.
type TopologyDoc struct {
	Stations           map[string]StationDoc        `json:"stations"`
	Tracks             map[string]TrackDoc          `json:"tracks"`
	RouteAlternatives  map[string][]string          `json:"route_alternatives,omitempty"`
}

// DecodeTopology unmarshals a topology document and converts it into the
// graph's native station/track maps.
func DecodeTopology(data []byte) (map[string]topology.Station, map[string]topology.Track, error) {
	var doc TopologyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode topology document: %w", err)
	}
	if len(doc.Stations) == 0 {
		return nil, nil, fmt.Errorf("topology document has no stations")
	}

	stations := make(map[string]topology.Station, len(doc.Stations))
	for code, s := range doc.Stations {
		var coords *topology.Coordinates
		if s.Coordinates != nil {
			coords = &topology.Coordinates{Lat: s.Coordinates.Lat, Lon: s.Coordinates.Lon}
		}
		stations[code] = topology.Station{
			Code:            code,
			Name:            s.Name,
			Type:            topology.StationType(s.Type),
			Platforms:       s.Platforms,
			CapacityPerHour: s.CapacityPerHour,
			Coordinates:     coords,
		}
	}

	tracks := make(map[string]topology.Track, len(doc.Tracks))
	for id, t := range doc.Tracks {
		status := topology.TrackStatus(t.Status)
		if status == "" {
			status = topology.StatusOperational
		}
		tracks[id] = topology.Track{
			ID:                    id,
			From:                  t.From,
			To:                    t.To,
			DistanceKM:            t.DistanceKM,
			TravelTimeMinutes:     t.TravelTimeMinutes,
			TrackType:             topology.TrackType(t.TrackType),
			CapacityTrainsPerHour: t.CapacityTrainsPerHour,
			Priority:              topology.TrackPriority(t.Priority),
			MaxSpeedKMH:           t.MaxSpeedKMH,
			Status:                status,
		}
	}

	return stations, tracks, nil
}

// DemoTopology is the minimal fallback topology (3 stations, 2 tracks)
// substituted only when demo mode is explicitly requested.
func DemoTopology() (map[string]topology.Station, map[string]topology.Track) {
	stations := map[string]topology.Station{
		"NDLS": {Code: "NDLS", Name: "New Delhi", Type: topology.StationTerminal, Platforms: 16, CapacityPerHour: 40,
			Coordinates: &topology.Coordinates{Lat: 28.6435, Lon: 77.2197}},
		"ANVR": {Code: "ANVR", Name: "Anand Vihar", Type: topology.StationJunction, Platforms: 6, CapacityPerHour: 20,
			Coordinates: &topology.Coordinates{Lat: 28.6469, Lon: 77.3152}},
		"GZB": {Code: "GZB", Name: "Ghaziabad", Type: topology.StationStandard, Platforms: 8, CapacityPerHour: 25,
			Coordinates: &topology.Coordinates{Lat: 28.6692, Lon: 77.4538}},
	}
	tracks := map[string]topology.Track{
		"NDLS_ANVR_MAIN": {ID: "NDLS_ANVR_MAIN", From: "NDLS", To: "ANVR", DistanceKM: 15, TravelTimeMinutes: 18,
			TrackType: topology.TrackDoubleLine, CapacityTrainsPerHour: 6, Priority: topology.PriorityHigh, MaxSpeedKMH: 110, Status: topology.StatusOperational},
		"ANVR_GZB_MAIN": {ID: "ANVR_GZB_MAIN", From: "ANVR", To: "GZB", DistanceKM: 12, TravelTimeMinutes: 14,
			TrackType: topology.TrackDoubleLine, CapacityTrainsPerHour: 6, Priority: topology.PriorityMedium, MaxSpeedKMH: 100, Status: topology.StatusOperational},
	}
	return stations, tracks
}
