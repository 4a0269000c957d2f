/*
 * basis_test.go, part of goscf.
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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sShell(center int) *Shell {
	return &Shell{L: 0, Exps: []float64{1.0}, Coefs: []float64{1.0}, Center: center, Pure: true}
}

func pShell(center int) *Shell {
	return &Shell{L: 1, Exps: []float64{1.0}, Coefs: []float64{1.0}, Center: center, Pure: true}
}

func TestSetOffsets(t *testing.T) {
	bs, err := NewSet([]*Shell{sShell(0), pShell(0), sShell(1)})
	require.NoError(t, err)
	require.Equal(t, 3, bs.Len())
	require.Equal(t, 5, bs.NBasis()) //1+3+1
	require.Equal(t, 0, bs.First(0))
	require.Equal(t, 1, bs.First(1))
	require.Equal(t, 4, bs.First(2))
	require.Equal(t, 1, bs.MaxL())
}

func TestAtomSubset(t *testing.T) {
	bs, err := NewSet([]*Shell{sShell(0), pShell(0), sShell(1), pShell(1)})
	require.NoError(t, err)
	sub, offset, err := bs.AtomSubset(1)
	require.NoError(t, err)
	require.Equal(t, 2, sub.Len())
	require.Equal(t, 4, sub.NBasis())
	require.Equal(t, 4, offset)
	//subset shells must look like an isolated atom
	require.Equal(t, 0, sub.Shell(0).Center)

	_, _, err = bs.AtomSubset(7)
	require.Error(t, err)
}

func TestTilingInvariants(t *testing.T) {
	var shells []*Shell
	for i := 0; i < 10; i++ {
		shells = append(shells, sShell(i), pShell(i))
	}
	bs, err := NewSet(shells)
	require.NoError(t, err)

	tl := TileAO(bs, 6, true)

	//tile sizes sum to nbf
	sum := 0
	for _, s := range tl.TileSizes {
		sum += s
	}
	require.Equal(t, bs.NBasis(), sum)

	//boundaries strictly increasing, last one closes the shell list
	for i := 1; i < len(tl.Boundaries); i++ {
		require.Greater(t, tl.Boundaries[i], tl.Boundaries[i-1])
	}
	require.Equal(t, bs.Len()-1, tl.Boundaries[len(tl.Boundaries)-1])

	//every shell belongs to exactly one tile
	seen := make(map[int]int)
	for it := 0; it < tl.NTiles(); it++ {
		lo, hi := tl.ShellRange(it)
		for s := lo; s <= hi; s++ {
			seen[s]++
		}
	}
	for s := 0; s < bs.Len(); s++ {
		require.Equal(t, 1, seen[s], "shell %d", s)
	}
}

func TestTilingHeuristicReset(t *testing.T) {
	var shells []*Shell
	for i := 0; i < 50; i++ {
		shells = append(shells, pShell(i)) //nbf = 150
	}
	bs, err := NewSet(shells)
	require.NoError(t, err)

	//tileSize 2 < 5% of 150 = 7.5, and no user override: reset to ceil(7.5)=8
	tl := TileAO(bs, 2, false)
	require.Equal(t, 8, tl.TileSize)

	//with a user-fixed size the heuristic must not fire
	tl = TileAO(bs, 2, true)
	require.Equal(t, 2, tl.TileSize)
}

func TestTilingOversizedShell(t *testing.T) {
	//a single shell larger than the target forms its own tile; shells are
	//never split across tiles
	big := &Shell{L: 3, Exps: []float64{1}, Coefs: []float64{1}, Pure: true} //7 functions
	bs, err := NewSet([]*Shell{big, sShell(0), sShell(1)})
	require.NoError(t, err)
	tl := TileAO(bs, 3, true)
	require.Equal(t, []int{7, 2}, tl.TileSizes)
	require.Equal(t, []int{0, 2}, tl.Boundaries)
	require.Equal(t, 0, tl.TileOf(0))
	require.Equal(t, 1, tl.TileOf(2))
}
