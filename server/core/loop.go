package core

import (
	"sync"
	"sync/atomic"
	"time"
)

type GameLoop struct {
	sim      *Simulation
	tickRate int
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

func NewGameLoop(sim *Simulation, tickRate int) *GameLoop {
	return &GameLoop{
		sim:      sim,
		tickRate: max(tickRate, 1),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop on its own goroutine. Only the first Start or Run
// call starts the loop.
func (g *GameLoop) Start() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	go g.run()
}

// Run runs the loop on the calling goroutine until Stop. It returns at once
// if the loop is already running.
func (g *GameLoop) Run() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	g.run()
}

func (g *GameLoop) run() {
	defer close(g.done)

	interval := time.Second / time.Duration(g.tickRate)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("game loop started", "tickRate", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			logger.Info("game loop stopped", "ticks", g.sim.Ticks())
			return
		case <-ticker.C:
			g.sim.Tick(dt)
		}
	}
}

// Stop signals the loop and waits for a started loop to return. Calling Stop
// more than once is fine.
func (g *GameLoop) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopChan)
	})
	if g.started.Load() {
		<-g.done
	}
}
