/*
 * tiling.go, part of goscf.
 *
 * Copyright 2024 The goSCF developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package basis

import "math"

//Tiling partitions the atomic-orbital index space of a basis set into
//contiguous ranges ("tiles") sized near a target tile size. Tiles set the
//granularity of distributed storage and of parallel work distribution.
type Tiling struct {
	ShellSizes []int //basis functions per shell, in shell order
	Boundaries []int //shell index closing each tile; strictly increasing
	TileSizes  []int //basis functions per tile; sums to NBasis
	TileSize   int   //the target size actually used, after any heuristic reset
}

//NTiles returns the number of tiles.
func (t *Tiling) NTiles() int {
	return len(t.TileSizes)
}

//ShellRange returns the half-open-inclusive shell index range [lo,hi] covered
//by tile it.
func (t *Tiling) ShellRange(it int) (lo, hi int) {
	hi = t.Boundaries[it]
	if it > 0 {
		lo = t.Boundaries[it-1] + 1
	}
	return lo, hi
}

//TileOf returns the tile index owning shell s.
func (t *Tiling) TileOf(s int) int {
	for it, b := range t.Boundaries {
		if s <= b {
			return it
		}
	}
	panic("basis: shell index outside tiling")
}

//TileAO tiles the basis set bs with the requested tile size. Shell sizes are
//accumulated greedily until the running sum reaches the target, then the tile
//is closed; a trailing partial tile is flushed. A shell larger than the
//target still forms its own tile: shells are atomic units and never split.
//
//When the caller did not fix the tile size (userSet false) and the requested
//size is below 5% of the basis size, the target is reset once to
//ceil(0.05*nbf) before tiling. This mirrors the granularity heuristic used
//for every downstream tensor allocation.
func TileAO(bs *Set, tileSize int, userSet bool) *Tiling {
	n := bs.NBasis()
	if !userSet && float64(tileSize) < 0.05*float64(n) {
		tileSize = int(math.Ceil(0.05 * float64(n)))
	}
	t := &Tiling{TileSize: tileSize}
	t.ShellSizes = make([]int, bs.Len())
	for i := 0; i < bs.Len(); i++ {
		t.ShellSizes[i] = bs.Shell(i).Size()
	}
	est := 0
	for s := 0; s < bs.Len(); s++ {
		est += t.ShellSizes[s]
		if est >= tileSize {
			t.TileSizes = append(t.TileSizes, est)
			t.Boundaries = append(t.Boundaries, s) //shell id closing the tile
			est = 0
		}
	}
	if est > 0 {
		t.TileSizes = append(t.TileSizes, est)
		t.Boundaries = append(t.Boundaries, bs.Len()-1)
	}
	return t
}
