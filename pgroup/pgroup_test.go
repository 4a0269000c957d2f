/*
 * pgroup_test.go, part of goscf.
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

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

//spmd runs body once per rank, each on its own goroutine, and waits.
func spmd(members []*Member, body func(m *Member)) {
	var wg sync.WaitGroup
	for _, m := range members {
		wg.Add(1)
		go func(m *Member) {
			defer wg.Done()
			body(m)
		}(m)
	}
	wg.Wait()
}

func TestLocal(t *testing.T) {
	var g Group = Local{}
	require.Equal(t, 0, g.Rank())
	require.Equal(t, 1, g.Size())
	buf := []float64{1, 2, 3}
	g.Broadcast(buf, 0)
	g.AllReduceSum(buf)
	require.Equal(t, []float64{1, 2, 3}, buf)
}

func TestTeamBroadcast(t *testing.T) {
	members := NewTeam(4)
	var mu sync.Mutex
	got := make(map[int][]float64)
	spmd(members, func(m *Member) {
		buf := make([]float64, 3)
		if m.Rank() == 2 {
			copy(buf, []float64{7, 8, 9})
		}
		m.Broadcast(buf, 2)
		mu.Lock()
		got[m.Rank()] = buf
		mu.Unlock()
	})
	for r := 0; r < 4; r++ {
		require.Equal(t, []float64{7, 8, 9}, got[r], "rank %d", r)
	}
}

func TestTeamAllReduceSum(t *testing.T) {
	members := NewTeam(3)
	var mu sync.Mutex
	got := make(map[int][]float64)
	spmd(members, func(m *Member) {
		buf := []float64{float64(m.Rank()), 1}
		m.AllReduceSum(buf)
		mu.Lock()
		got[m.Rank()] = buf
		mu.Unlock()
	})
	for r := 0; r < 3; r++ {
		require.Equal(t, []float64{3, 3}, got[r], "rank %d", r) //0+1+2, 1*3
	}
}

func TestTeamRepeatedCollectives(t *testing.T) {
	//back-to-back reductions must not see stale accumulator state
	members := NewTeam(4)
	spmd(members, func(m *Member) {
		for iter := 0; iter < 50; iter++ {
			buf := []float64{1}
			m.AllReduceSum(buf)
			if buf[0] != 4 {
				t.Errorf("iter %d rank %d: got %v", iter, m.Rank(), buf[0])
				return
			}
			m.Barrier()
		}
	})
}

func TestGrid(t *testing.T) {
	members := NewTeam(5) //grid should be 2x2, rank 4 idle
	spmd(members, func(m *Member) {
		g := NewGrid(m, 2)
		pr, pc := g.Dims()
		require.Equal(t, 2, pr)
		require.Equal(t, 2, pc)
		if m.Rank() < 4 {
			require.True(t, g.Valid())
			row, col := g.Coords()
			require.Equal(t, m.Rank()/2, row)
			require.Equal(t, m.Rank()%2, col)
		} else {
			require.False(t, g.Valid())
		}
		m.Barrier()
	})

	//block-cyclic ownership covers every block exactly once
	g0 := NewGrid(Local{}, 4)
	require.True(t, g0.OwnsBlock(0, 0))
	require.True(t, g0.OwnsBlock(3, 5))
	require.Equal(t, 3, g0.NBlocks(9))
}
