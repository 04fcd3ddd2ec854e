package leveldata

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

// ErrNoTerrainLayer is returned when a TMX file lacks the terrain layer.
var ErrNoTerrainLayer = errors.New("terrain layer not found")

// LoadOptions names where elevation lives in a TMX file.
type LoadOptions struct {
	LayerName     string
	ElevationKey  string
	ElevationStep float64
	CellSize      float64
}

// LoadTerrain parses a TMX file into elevation samples: one sample per tile of
// the terrain layer, read from the tile's elevation property and scaled by
// ElevationStep. Empty tiles become holes. It takes an fs.FS so callers can
// pass embed.FS or os.DirFS.
func LoadTerrain(fsys fs.FS, tmxPath string, opts LoadOptions) (*TerrainData, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	cellSize := opts.CellSize
	if cellSize <= 0 {
		cellSize = float64(levelMap.TileWidth)
	}

	for _, layer := range levelMap.Layers {
		if layer.Name != opts.LayerName {
			continue
		}
		data := &TerrainData{
			Columns:    levelMap.Width,
			Rows:       levelMap.Height,
			CellSize:   cellSize,
			Elevations: make([]float64, levelMap.Width*levelMap.Height),
		}
		for y := 0; y < levelMap.Height; y++ {
			for x := 0; x < levelMap.Width; x++ {
				i := y*levelMap.Width + x
				tile := layer.Tiles[i]
				if tile.IsNil() {
					data.Elevations[i] = math.NaN()
					continue
				}

				var elevation float64
				if tilesetTile, err := tile.Tileset.GetTilesetTile(tile.ID); err == nil {
					elevation = tilesetTile.Properties.GetFloat(opts.ElevationKey)
				}
				data.Elevations[i] = elevation * opts.ElevationStep
			}
		}
		return data, nil
	}

	return nil, fmt.Errorf("%s: %w: %q", tmxPath, ErrNoTerrainLayer, opts.LayerName)
}

// LoadAllTerrains discovers all .tmx files in dir within fsys, loads terrain
// for each, and returns a map keyed by stem name plus a sorted list of names.
func LoadAllTerrains(fsys fs.FS, dir string, opts LoadOptions) (map[string]*TerrainData, []string, error) {
	pattern := dir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	terrains := make(map[string]*TerrainData, len(matches))
	names := make([]string, 0, len(matches))

	for _, path := range matches {
		data, err := LoadTerrain(fsys, path, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".tmx")
		terrains[stem] = data
		names = append(names, stem)
	}

	sort.Strings(names)
	return terrains, names, nil
}
