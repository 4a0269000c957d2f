/*
 * pgroup.go, part of goscf.
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

//Package pgroup provides the single-program-multiple-data process-group
//abstraction the SCF core runs on. A Group mediates all synchronization:
//work is suspended only at collective points (Barrier, Broadcast,
//AllReduceSum), never via cooperative scheduling. The production runtime
//plugs an MPI-like group in behind the interface; Local covers single-rank
//runs and Team runs every rank as a goroutine inside one process, which is
//how the distributed code paths are exercised in tests.
package pgroup

import "sync"

//Group is one member's view of a process group. Every method is collective
//except Rank and Size: all members must call it, in the same order.
type Group interface {

	//Rank returns this member's index in the group.
	Rank() int

	//Size returns the number of members.
	Size() int

	//Barrier blocks until every member has entered it.
	Barrier()

	//Broadcast replaces buf on every member with root's buf.
	//All members must pass buffers of the same length.
	Broadcast(buf []float64, root int)

	//AllReduceSum replaces buf on every member with the element-wise sum
	//of all members' buffers.
	AllReduceSum(buf []float64)
}

//Local is the trivial single-rank group. All collectives are no-ops.
type Local struct{}

func (Local) Rank() int                        { return 0 }
func (Local) Size() int                        { return 1 }
func (Local) Barrier()                         {}
func (Local) Broadcast(_ []float64, _ int)     {}
func (Local) AllReduceSum(_ []float64)         {}

//team is the state shared by the members of a goroutine-backed group.
type team struct {
	n     int
	mu    sync.Mutex
	cond  *sync.Cond
	count int
	gen   int
	slot  []float64 //broadcast staging
	acc   []float64 //reduction accumulator
}

//Member is one rank of a Team group. Each Member must be driven by its own
//goroutine; sharing a Member between goroutines deadlocks the collectives.
type Member struct {
	t    *team
	rank int
}

//NewTeam creates an in-process group of n ranks and returns one Member per
//rank.
func NewTeam(n int) []*Member {
	if n < 1 {
		panic("pgroup: team size must be positive")
	}
	t := &team{n: n}
	t.cond = sync.NewCond(&t.mu)
	ms := make([]*Member, n)
	for i := range ms {
		ms[i] = &Member{t: t, rank: i}
	}
	return ms
}

//Rank returns this member's index in the group.
func (m *Member) Rank() int { return m.rank }

//Size returns the number of members.
func (m *Member) Size() int { return m.t.n }

//Barrier blocks until every member of the team has entered it.
func (m *Member) Barrier() {
	t := m.t
	t.mu.Lock()
	gen := t.gen
	t.count++
	if t.count == t.n {
		t.count = 0
		t.gen++
		t.cond.Broadcast()
	} else {
		for gen == t.gen {
			t.cond.Wait()
		}
	}
	t.mu.Unlock()
}

//Broadcast replaces buf on every member with root's buf.
func (m *Member) Broadcast(buf []float64, root int) {
	t := m.t
	if m.rank == root {
		t.mu.Lock()
		t.slot = append(t.slot[:0], buf...)
		t.mu.Unlock()
	}
	m.Barrier()
	if m.rank != root {
		copy(buf, t.slot)
	}
	m.Barrier()
}

//AllReduceSum replaces buf on every member with the element-wise sum of all
//members' buffers.
func (m *Member) AllReduceSum(buf []float64) {
	t := m.t
	t.mu.Lock()
	if len(t.acc) < len(buf) {
		t.acc = make([]float64, len(buf))
	}
	for i, v := range buf {
		t.acc[i] += v
	}
	t.mu.Unlock()
	m.Barrier()
	copy(buf, t.acc[:len(buf)])
	m.Barrier()
	if m.rank == 0 {
		t.mu.Lock()
		t.acc = t.acc[:0]
		t.mu.Unlock()
	}
	m.Barrier()
}
