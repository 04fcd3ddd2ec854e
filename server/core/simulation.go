package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var logger = log.WithPrefix("server")

var ErrDuplicateComponent = errors.New("component name already registered")

// Component is a named part of the simulation driven once per tick.
type Component interface {
	Name() string
	OnTick(dt float64)
}

// Simulation owns the world and a registry of named components that it ticks
// in registration order.
type Simulation struct {
	world donburi.World
	ecs   *ecs.ECS
	loop  *GameLoop

	components []Component
	byName     map[string]Component
	ticks      uint64
	mu         sync.Mutex
}

// NewSimulation creates an empty simulation ticking at tickRate.
func NewSimulation(tickRate int) *Simulation {
	world := donburi.NewWorld()
	s := &Simulation{
		world:  world,
		ecs:    ecs.NewECS(world),
		byName: make(map[string]Component),
	}
	s.loop = NewGameLoop(s, tickRate)
	return s
}

// Register adds c to the registry. Names must be unique.
func (s *Simulation) Register(c Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := c.Name()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateComponent)
	}
	s.byName[name] = c
	s.components = append(s.components, c)
	logger.Info("component registered", "name", name)
	return nil
}

// Unregister removes the component called name.
func (s *Simulation) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; !exists {
		return false
	}
	delete(s.byName, name)
	for i, c := range s.components {
		if c.Name() == name {
			s.components = append(s.components[:i], s.components[i+1:]...)
			break
		}
	}
	return true
}

// Component looks up a registered component by name.
func (s *Simulation) Component(name string) (Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byName[name]
	return c, ok
}

// Tick advances every component by dt.
func (s *Simulation) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.components {
		c.OnTick(dt)
	}
	s.ticks++
}

// Ticks returns how many ticks have run.
func (s *Simulation) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Start runs the game loop in the background.
func (s *Simulation) Start() {
	s.loop.Start()
}

// Stop halts the game loop and waits for it to exit.
func (s *Simulation) Stop() {
	s.loop.Stop()
}

// World returns the ECS world
func (s *Simulation) World() donburi.World {
	return s.world
}

// ECS returns the system runner wrapped by NewSystemsComponent.
func (s *Simulation) ECS() *ecs.ECS {
	return s.ecs
}

// systemsComponent runs the ECS update systems as one registry entry.
type systemsComponent struct {
	name string
	ecs  *ecs.ECS
}

// NewSystemsComponent wraps the simulation's ECS systems as a component, so
// they run at a chosen point in the tick order.
func (s *Simulation) NewSystemsComponent(name string) Component {
	return &systemsComponent{name: name, ecs: s.ecs}
}

func (c *systemsComponent) Name() string { return c.name }

func (c *systemsComponent) OnTick(float64) {
	c.ecs.Update()
}
