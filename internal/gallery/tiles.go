package gallery

// TileCount is the fixed number of image slots each car card renders.
const TileCount = 4

// Tile is one slot of the 2x2 gallery grid: a real image or a placeholder.
type Tile struct {
	URL         string
	Placeholder bool
}

// Tiles pads or truncates urls to exactly TileCount entries. Extra images are
// silently dropped; missing ones become placeholders so the grid always
// aligns.
func Tiles(urls []string) []Tile {
	out := make([]Tile, 0, TileCount)
	for _, u := range urls {
		if len(out) == TileCount {
			break
		}
		out = append(out, Tile{URL: u})
	}
	for len(out) < TileCount {
		out = append(out, Tile{Placeholder: true})
	}
	return out
}
