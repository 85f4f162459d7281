package render

// Tile is a half-open pixel rectangle [minX,maxX) x [minY,maxY),
// produced by ComputeTiles and consumed by a single worker.
type Tile struct {
	MinX, MinY, MaxX, MaxY int
}

// ComputeTiles partitions [0,W)x[0,H) into fixed (tileW x tileH)
// blocks in row-major order, grounded on the teacher's
// generateTiles ceil-division loop in renderer_parallel.go. At most
// cap tiles are returned; if the full partition would exceed cap, the
// remainder is silently truncated (the caller-visible contract of
// §8 scenario 5).
func ComputeTiles(width, height, tileW, tileH, cap int) []Tile {
	tilesX := (width + tileW - 1) / tileW
	tilesY := (height + tileH - 1) / tileH

	tiles := make([]Tile, 0, min(cap, tilesX*tilesY))
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			if len(tiles) >= cap {
				return tiles
			}
			minX := tx * tileW
			minY := ty * tileH
			maxX := minX + tileW
			if maxX > width {
				maxX = width
			}
			maxY := minY + tileH
			if maxY > height {
				maxY = height
			}
			tiles = append(tiles, Tile{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY})
		}
	}
	return tiles
}
