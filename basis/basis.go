/*
 * basis.go, part of goscf.
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

//Package basis provides contracted-Gaussian shell and basis-set structures
//plus the atomic-orbital tiling used for distributed tensor allocation.
package basis

import "fmt"

/**Note: accessors here panic instead of returning errors. They are "fundamental"
 * functions: if something goes wrong at this level the calculation is way-most
 * likely wrong already and should crash.**/

//Shell is a group of contracted Gaussian basis functions sharing a center and
//angular momentum. Shells are immutable once the basis set is built; the
//basis-set collection owns them for the whole run.
type Shell struct {
	L      int       //angular momentum
	Exps   []float64 //primitive exponents
	Coefs  []float64 //contraction coefficients, one per primitive
	Origin [3]float64
	Center int  //index of the atom this shell sits on
	Pure   bool //spherical (true) or cartesian components
}

//Size returns the number of basis functions the shell contributes:
//2l+1 for spherical shells, (l+1)(l+2)/2 for cartesian ones.
func (s *Shell) Size() int {
	if s == nil {
		panic("basis: Size of a nil shell")
	}
	if s.Pure {
		return 2*s.L + 1
	}
	return (s.L + 1) * (s.L + 2) / 2
}

//NPrim returns the number of primitives in the contraction.
func (s *Shell) NPrim() int {
	return len(s.Exps)
}

//SameCenter reports whether both shells sit on the same atomic center.
func (s *Shell) SameCenter(o *Shell) bool {
	return s.Center == o.Center
}

//Set is an ordered collection of shells, the basis set for one molecule or
//for one isolated atom in the guess construction.
type Set struct {
	shells []*Shell
	first  []int //first basis function index of each shell
	nbf    int
}

//NewSet builds a basis set from shells. The shell order is preserved; basis
//function offsets are computed once here.
func NewSet(shells []*Shell) (*Set, error) {
	if len(shells) == 0 {
		return nil, fmt.Errorf("basis: empty shell list")
	}
	b := &Set{shells: shells, first: make([]int, len(shells))}
	for i, s := range shells {
		b.first[i] = b.nbf
		b.nbf += s.Size()
	}
	return b, nil
}

//Len returns the number of shells in the set.
func (b *Set) Len() int {
	return len(b.shells)
}

//NBasis returns the total number of basis functions.
func (b *Set) NBasis() int {
	return b.nbf
}

//Shell returns the shell with index i. Panics if out of range.
func (b *Set) Shell(i int) *Shell {
	return b.shells[i]
}

//First returns the index of the first basis function of shell i.
func (b *Set) First(i int) int {
	return b.first[i]
}

//MaxL returns the largest angular momentum in the set.
func (b *Set) MaxL() int {
	max := 0
	for _, s := range b.shells {
		if s.L > max {
			max = s.L
		}
	}
	return max
}

//AtomSubset returns a new basis set containing only the shells centered on
//atom iatom, re-indexed so the subset describes an isolated atom, plus the
//first molecular basis-function index covered by those shells. The subset
//shares the Shell values with the parent set.
func (b *Set) AtomSubset(iatom int) (*Set, int, error) {
	var sub []*Shell
	offset := -1
	for i, s := range b.shells {
		if s.Center != iatom {
			continue
		}
		if offset < 0 {
			offset = b.first[i]
		}
		cp := *s
		cp.Center = 0
		sub = append(sub, &cp)
	}
	if len(sub) == 0 {
		return nil, 0, fmt.Errorf("basis: atom %d has no shells", iatom)
	}
	set, err := NewSet(sub)
	if err != nil {
		return nil, 0, err
	}
	return set, offset, nil
}
