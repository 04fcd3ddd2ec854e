// Package leveldata provides TMX terrain parsing. It has no dependencies on
// donburi or resolv, pure data only.
package leveldata

import "math"

// TerrainData is a grid of elevation samples. Sample (col, row) sits at world
// (col*CellSize, row*CellSize). Holes are NaN.
type TerrainData struct {
	Columns    int
	Rows       int
	CellSize   float64
	Elevations []float64 // row-major, Columns*Rows
}

// At returns the elevation sample at (col, row), NaN when out of range.
func (t *TerrainData) At(col, row int) float64 {
	if col < 0 || row < 0 || col >= t.Columns || row >= t.Rows {
		return math.NaN()
	}
	return t.Elevations[row*t.Columns+col]
}

// NewTerrainData builds samples from fn evaluated at each sample's world XY.
func NewTerrainData(columns, rows int, cellSize float64, fn func(x, y float64) float64) *TerrainData {
	data := &TerrainData{
		Columns:    columns,
		Rows:       rows,
		CellSize:   cellSize,
		Elevations: make([]float64, columns*rows),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			data.Elevations[row*columns+col] = fn(float64(col)*cellSize, float64(row)*cellSize)
		}
	}
	return data
}
