/*
 * grid.go, part of goscf.
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

package pgroup

import "math"

//Grid is a 2-D process sub-grid carved from a Group, used for block-cyclic
//distributed linear algebra. The grid takes the largest square that fits in
//the group; ranks beyond nprow*npcol do not participate in grid work and
//idle at the surrounding collectives.
type Grid struct {
	Group
	nprow, npcol int
	mb           int //block size of the cyclic distribution
}

//NewGrid builds a square 2-D grid over g with block size mb.
func NewGrid(g Group, mb int) *Grid {
	if mb < 1 {
		panic("pgroup: grid block size must be positive")
	}
	p := int(math.Sqrt(float64(g.Size())))
	if p < 1 {
		p = 1
	}
	return &Grid{Group: g, nprow: p, npcol: p, mb: mb}
}

//Dims returns the grid dimensions (process rows, process columns).
func (g *Grid) Dims() (int, int) { return g.nprow, g.npcol }

//MB returns the block size of the cyclic distribution.
func (g *Grid) MB() int { return g.mb }

//Valid reports whether the calling rank participates in the grid.
func (g *Grid) Valid() bool {
	return g.Rank() < g.nprow*g.npcol
}

//Coords returns the calling rank's (row, column) position in the grid.
//Only meaningful when Valid.
func (g *Grid) Coords() (int, int) {
	r := g.Rank()
	return r / g.npcol, r % g.npcol
}

//OwnsBlock reports whether the calling rank owns block (bi, bj) of a matrix
//distributed block-cyclically over the grid.
func (g *Grid) OwnsBlock(bi, bj int) bool {
	if !g.Valid() {
		return false
	}
	myrow, mycol := g.Coords()
	return bi%g.nprow == myrow && bj%g.npcol == mycol
}

//NBlocks returns the number of mb-sized blocks covering dimension n.
func (g *Grid) NBlocks(n int) int {
	return (n + g.mb - 1) / g.mb
}
