package main

import (
	"bufio"
	"flag"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/automoto/deadreckoning/archetypes"
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/network"
	"github.com/automoto/deadreckoning/server/core"
	"github.com/automoto/deadreckoning/shared/leveldata"
	"github.com/automoto/deadreckoning/shared/protocol"
	"github.com/automoto/deadreckoning/systems"
	"github.com/automoto/deadreckoning/terrain"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
)

func main() {
	if err := config.InitPersistence("deadreckoning"); err == nil {
		if saved, err := config.LoadTunables(); err == nil {
			config.ApplyTunables(saved)
		}
	}

	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	tickRate := flag.Int("tickrate", config.Server.TickRate, "Simulation tick rate (ticks per second)")
	terrainPath := flag.String("terrain", "", "TMX file to load terrain from (empty = generated hills)")
	entities := flag.Int("entities", config.Server.DemoEntities, "Number of synthetic remote entities")
	interval := flag.Float64("interval", config.Server.UpdateInterval, "Seconds between synthetic updates")
	jitter := flag.Float64("jitter", config.Server.UpdateJitter, "Max random offset added to -interval")
	highRes := flag.Float64("highres", config.DeadReckoning.HighResGroundClampingRange, "Eye distance for three-point ground clamping")
	forceClamp := flag.Float64("forceclamp", config.DeadReckoning.ForceClampTime, "Seconds between forced re-clamps")
	curve := flag.String("curve", config.DeadReckoning.SmoothingCurve, "Smoothing curve (linear, sine)")
	seed := flag.Int64("seed", 42, "Random seed for the synthetic feed")
	duration := flag.Duration("duration", 0, "Stop after this long (0 = run until interrupted)")
	recordPath := flag.String("record", "", "Write every applied update to this file")
	replayPath := flag.String("replay", "", "Drive entities from a recording instead of the synthetic feed")
	saveTunables := flag.Bool("save-tunables", false, "Persist the dead reckoning tunables given on the command line")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal("invalid log level", "level", *logLevel, "error", err)
	}
	log.SetLevel(level)

	config.DeadReckoning.HighResGroundClampingRange = *highRes
	config.DeadReckoning.ForceClampTime = *forceClamp
	config.DeadReckoning.SmoothingCurve = *curve
	if *saveTunables {
		if err := config.SaveTunables(); err != nil {
			log.Warn("tunables not saved", "error", err)
		}
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatal("failed to register components", "error", err)
	}

	heightfield, err := loadTerrain(*terrainPath)
	if err != nil {
		log.Fatal("failed to load terrain", "path", *terrainPath, "error", err)
	}

	sim := core.NewSimulation(*tickRate)
	world := sim.World()

	manager := systems.NewDeadReckoningManager(world)
	manager.SetTerrainCollaborator(heightfield)
	manager.SetEyePointCollaborator(systems.CameraEyePoint{World: world})

	viewer := archetypes.Viewer.SpawnInWorld(world)
	components.Camera.SetValue(viewer, components.CameraData{Position: mgl64.Vec3{0, 0, config.Camera.FollowHeight}})

	intake := network.NewIntake()
	var feed core.Component
	var source core.TrackingSource

	if *replayPath != "" {
		recording, err := readRecording(*replayPath)
		if err != nil {
			log.Fatal("failed to read recording", "path", *replayPath, "error", err)
		}
		replay := core.NewReplay(world, recording)
		for id, entry := range replay.Spawn() {
			if err := manager.RegisterEntity(id, entry); err != nil {
				log.Fatal("failed to register entity", "id", id, "error", err)
			}
		}
		feed = replay
	} else {
		synthetic := core.NewFeed(world, *seed)
		synthetic.SetUpdateInterval(*interval, *jitter)
		for i := 0; i < *entities; i++ {
			id := esync.NetworkId(i + 1)
			angle := 2 * math.Pi * float64(i) / float64(max(*entities, 1))
			pos := mgl64.Vec3{64 + 40*math.Cos(angle), 64 + 40*math.Sin(angle), 0}
			entry := synthetic.Spawn(id, pos, 4+float64(i%3), 0.2+0.1*float64(i%4))
			if err := manager.RegisterEntity(id, entry); err != nil {
				log.Fatal("failed to register entity", "id", id, "error", err)
			}
		}
		feed, source = synthetic, synthetic
	}

	const followed esync.NetworkId = 1
	reporter := core.NewReporter(source, intake, 1)
	reporter.Follow(followed)
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			log.Fatal("failed to create recording", "path", *recordPath, "error", err)
		}
		defer f.Close()
		recorder, err := network.NewRecorder(f, *tickRate)
		if err != nil {
			log.Fatal("failed to start recording", "path", *recordPath, "error", err)
		}
		intake.SetRecorder(recorder)
		reporter.SetRecorder(recorder)
		log.Info("recording updates", "path", *recordPath, "session", recorder.Session())
	}

	sim.ECS().AddSystem(network.NewIntakeSystem(intake))
	sim.ECS().AddSystem(systems.NewCameraFollowSystem(func() esync.NetworkId { return followed }))

	for _, c := range []core.Component{
		feed,
		sim.NewSystemsComponent("Systems"),
		manager,
		reporter,
	} {
		if err := sim.Register(c); err != nil {
			log.Fatal("failed to register component", "error", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting simulation", "tickRate", *tickRate, "entities", *entities, "terrain", *terrainPath)
	sim.Start()

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}
	select {
	case <-sigChan:
		log.Info("shutting down simulation...")
	case <-timeout:
	}
	sim.Stop()
}

func loadTerrain(path string) (*terrain.Heightfield, error) {
	if path == "" {
		data := leveldata.NewTerrainData(129, 129, config.Terrain.CellSize, func(x, y float64) float64 {
			return 3*math.Sin(x/10) + 2*math.Cos(y/14)
		})
		return terrain.New(data)
	}

	data, err := leveldata.LoadTerrain(os.DirFS(filepath.Dir(path)), filepath.Base(path), leveldata.LoadOptions{
		LayerName:     config.Terrain.LayerName,
		ElevationKey:  config.Terrain.ElevationKey,
		ElevationStep: config.Terrain.ElevationStep,
		CellSize:      config.Terrain.CellSize,
	})
	if err != nil {
		return nil, err
	}
	return terrain.New(data)
}

func readRecording(path string) (*network.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return network.ReadRecording(bufio.NewReader(f))
}
