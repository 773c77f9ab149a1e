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

// Event is the disruption envelope accepted by Network.ApplyEvent (see the
// external event interface). Unknown event types are treated as "delay".
type Event struct {
	EventType      string `json:"event_type"`
	TrainID        string `json:"train_id,omitempty"`
	TrackID        string `json:"track_id,omitempty"`
	DelayMinutes   int    `json:"delay_minutes,omitempty"`
	Description    string `json:"description,omitempty"`
	Weather        string `json:"weather,omitempty"`
	TrackCondition string `json:"track_condition,omitempty"`
}

const (
	EventDelay        = "delay"
	EventTrackFailure = "track_failure"
	EventTrackRepair  = "track_repair"
)

// Action is the remediation envelope accepted by Network.ApplyAction.
type Action struct {
	ActionType   string  `json:"action_type"`
	TrainID      string  `json:"train_id"`
	DurationMins int     `json:"duration_mins,omitempty"`
	RouteIndex   int     `json:"route_index,omitempty"`
	SpeedFactor  float64 `json:"speed_factor,omitempty"`
	Description  string  `json:"description,omitempty"`
}

const (
	ActionHalt        = "Halt"
	ActionReroute     = "Reroute"
	ActionCancel      = "Cancel"
	ActionSpeedAdjust = "SpeedAdjust"
)

// ReroutingInfo reports the outcome of recalculating one train's primary
// route after a topology change.
type ReroutingInfo struct {
	TrainID   string `json:"train_id"`
	Succeeded bool   `json:"succeeded"`
	NewRoute  string `json:"new_route_type,omitempty"`
}

// RecalculationResult is the return value of RecalculateRoutesForTrains.
type RecalculationResult struct {
	TotalAffected         int             `json:"total_affected"`
	SuccessfullyRerouted  int             `json:"successfully_rerouted"`
	ReroutingInfo         []ReroutingInfo `json:"rerouting_info"`
}
