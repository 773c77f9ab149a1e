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

// Command railcore loads a topology and schedule, applies one event, and
// prints the resulting multi-strategy recommendation set. It is a thin CLI
// embedding of the decision engine, not a service: the HTTP/WebSocket
// surface a production deployment would sit behind is out of scope here.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/railcore/internal/engine"
	"github.com/tracktitans/railcore/internal/network"
	"github.com/tracktitans/railcore/internal/scheduledoc"
	"github.com/tracktitans/railcore/internal/topology"
	"github.com/tracktitans/railcore/internal/trains"
)

var logger log.Logger

// InitializeLogger creates the root logger for the railcore binary.
func InitializeLogger() log.Logger {
	l := log.New()
	handler := log.StreamHandler(os.Stdout, log.LogfmtFormat())
	l.SetHandler(log.LvlFilterHandler(log.LvlInfo, handler))
	return l
}

const (
	exitOK            = 0
	exitLoadFailure   = 1
	exitEventFailure  = 2
)

func main() {
	topologyPath := flag.String("topology", "", "path to the topology document (JSON)")
	schedulePath := flag.String("schedule", "", "path to the schedule document (JSON)")
	eventPath := flag.String("event", "", "path to an event envelope (JSON); optional")
	demo := flag.Bool("demo", false, "substitute the minimal demo topology instead of -topology/-schedule")
	flag.Parse()

	_ = godotenv.Load(".env")

	logger = InitializeLogger()
	engine.InitializeLogger(logger)
	log := logger.New("module", "main")

	stations, tracks, schedule, err := loadNetworkInputs(*topologyPath, *schedulePath, *demo)
	if err != nil {
		log.Crit("failed to load network inputs", "error", err)
		os.Exit(exitLoadFailure)
	}

	graph := topology.New(stations, tracks)
	n := network.New(graph, schedule)
	e := engine.New(n)

	if *eventPath != "" {
		ev, err := loadEvent(*eventPath)
		if err != nil {
			log.Crit("failed to load event", "error", err)
			os.Exit(exitLoadFailure)
		}
		ok, err := e.ApplyEvent(ev)
		if err != nil || !ok {
			log.Error("event application failed", "error", err)
			os.Exit(exitEventFailure)
		}
		log.Info("event applied", "event_type", ev.EventType)
	}

	results := e.RunAllStrategies()
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Crit("failed to marshal results", "error", err)
		os.Exit(exitLoadFailure)
	}
	fmt.Println(string(out))
	os.Exit(exitOK)
}

func loadNetworkInputs(topologyPath, schedulePath string, demo bool) (map[string]topology.Station, map[string]topology.Track, []trains.Input, error) {
	if demo {
		stations, tracks := scheduledoc.DemoTopology()
		return stations, tracks, nil, nil
	}

	if topologyPath == "" || schedulePath == "" {
		return nil, nil, nil, fmt.Errorf("both -topology and -schedule are required unless -demo is set")
	}

	topologyBytes, err := os.ReadFile(topologyPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read topology file: %w", err)
	}
	stations, tracks, err := scheduledoc.DecodeTopology(topologyBytes)
	if err != nil {
		return nil, nil, nil, err
	}

	scheduleBytes, err := os.ReadFile(schedulePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read schedule file: %w", err)
	}
	schedule, err := scheduledoc.DecodeSchedule(scheduleBytes)
	if err != nil {
		return nil, nil, nil, err
	}

	return stations, tracks, schedule, nil
}

func loadEvent(path string) (network.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return network.Event{}, fmt.Errorf("read event file: %w", err)
	}
	var ev network.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return network.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
