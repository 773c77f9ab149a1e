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

// Package engine orchestrates the full decision pipeline: a reported event
// mutates the network, conflict detection runs against the result, solution
// candidates are generated for the first conflict found, and one or more
// strategy profiles score and select a recommendation.
package engine

import (
	"sync"
	"time"

	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/railcore/internal/conflict"
	"github.com/tracktitans/railcore/internal/network"
	"github.com/tracktitans/railcore/internal/solution"
	"github.com/tracktitans/railcore/internal/strategy"
)

var logger log.Logger = log.New("module", "engine")

// InitializeLogger rebinds the package logger under a parent logger, and
// propagates it to the component packages so every log line shares one root.
func InitializeLogger(parent log.Logger) {
	logger = parent.New("module", "engine")
	conflict.InitializeLogger(parent)
	solution.InitializeLogger(parent)
	strategy.InitializeLogger(parent)
	network.InitializeLogger(parent)
}

// Engine wires a live Network to the conflict/solution/strategy pipeline.
// It holds no state of its own beyond the network reference; every run
// operates on whatever the network currently contains.
type Engine struct {
	net *network.Network
}

// New binds an engine to a network.
func New(n *network.Network) *Engine {
	return &Engine{net: n}
}

// Network exposes the bound network for direct event/action application.
func (e *Engine) Network() *network.Network { return e.net }

// ApplyEvent applies an external disruption to the network. This
// completes-before any subsequent detection/generation/scoring call, per the
// pipeline's ordering guarantee.
func (e *Engine) ApplyEvent(ev network.Event) (bool, error) {
	return e.net.ApplyEvent(ev)
}

// ApplyAction applies an accepted recommendation back onto the live network.
func (e *Engine) ApplyAction(action network.Action) (bool, error) {
	return e.net.ApplyAction(action)
}

// detectFirstConflict runs conflict detection and returns only the first
// conflict found, per the engine's first-conflict-only resolution policy;
// the total conflict count is still reported alongside it.
func detectFirstConflict(n *network.Network, opts conflict.Options) (*conflict.Conflict, int) {
	conflicts := conflict.Detect(n, opts)
	if len(conflicts) == 0 {
		return nil, 0
	}
	return &conflicts[0], len(conflicts)
}

// RunStrategy runs the full pipeline on the live network under a single
// profile: detect the first conflict, generate candidates, score them.
func (e *Engine) RunStrategy(p strategy.Profile) strategy.Result {
	return runOn(e.net, p, conflict.DefaultOptions(time.Now()))
}

// RunStrategyAt is RunStrategy with an explicit clock carried in the
// detection options. Detection anchors its horizon to the projected
// arrivals, so the clock does not change which conflicts are found.
func (e *Engine) RunStrategyAt(p strategy.Profile, now time.Time) strategy.Result {
	return runOn(e.net, p, conflict.DefaultOptions(now))
}

func runOn(n *network.Network, p strategy.Profile, opts conflict.Options) strategy.Result {
	first, total := detectFirstConflict(n, opts)
	if first == nil {
		return strategy.Result{Status: strategy.StatusNoConflict, Strategy: p.Name, StrategyName: p.Name, StrategyDescription: p.Description}
	}

	n.RecordConflictDetected()
	candidates := solution.Generate(n, *first)
	return strategy.Evaluate(p, n, candidates, first, total)
}

// RunAllStrategies evaluates the three built-in profiles independently on
// deep-copied networks, so preview mutations performed while scoring one
// profile never leak into another. The three evaluations may run in
// parallel since each operates on its own clone.
func (e *Engine) RunAllStrategies() map[string]strategy.Result {
	return e.RunAllStrategiesAt(time.Now())
}

// RunAllStrategiesAt is RunAllStrategies with an explicit clock.
func (e *Engine) RunAllStrategiesAt(now time.Time) map[string]strategy.Result {
	profiles := strategy.All()
	results := make([]strategy.Result, len(profiles))

	var wg sync.WaitGroup
	wg.Add(len(profiles))
	for i, p := range profiles {
		go func(i int, p strategy.Profile) {
			defer wg.Done()
			clone := e.net.Clone()
			results[i] = runOn(clone, p, conflict.DefaultOptions(now))
		}(i, p)
	}
	wg.Wait()

	out := make(map[string]strategy.Result, len(profiles))
	for i, p := range profiles {
		out[p.Name] = results[i]
	}
	logger.Info("multi-strategy run complete", "profiles", len(profiles))
	return out
}
