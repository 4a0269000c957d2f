/*
 * atoms.go, part of goscf.
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

package scf

import (
	"fmt"
	"math"

	"github.com/goscf/goscf/integral"
)

//Atom is one nucleus of the molecule under study. Coordinates are in Bohr.
type Atom struct {
	Symbol   string
	Z        int
	Coords   [3]float64
	ECPNElec int //electrons replaced by an effective core potential, 0 if none
}

//NewAtom builds an atom from its element symbol, filling Z from the symbol
//table.
func NewAtom(symbol string, coords [3]float64) (*Atom, error) {
	z, ok := symbolZ[symbol]
	if !ok {
		return nil, newError(fmt.Sprintf("goSCF: unknown element symbol %q", symbol), "NewAtom")
	}
	return &Atom{Symbol: symbol, Z: z, Coords: coords}, nil
}

//Molecule is the atom list of one calculation.
type Molecule struct {
	Atoms []*Atom
}

//Len returns the number of atoms.
func (m *Molecule) Len() int {
	if m == nil {
		panic("goSCF: Len of a nil molecule")
	}
	return len(m.Atoms)
}

//Atom returns the atom with index i. Panics if out of range.
func (m *Molecule) Atom(i int) *Atom {
	return m.Atoms[i]
}

//NElectrons returns the total electron count for the given net charge,
//after removing any ECP-replaced core electrons.
func (m *Molecule) NElectrons(charge int) int {
	n := 0
	for _, a := range m.Atoms {
		n += a.Z - a.ECPNElec
	}
	return n - charge
}

//PointCharges returns the nuclei as classical point charges, with ECP-reduced
//effective charges, for the nuclear-attraction integrals.
func (m *Molecule) PointCharges() []integral.PointCharge {
	q := make([]integral.PointCharge, len(m.Atoms))
	for i, a := range m.Atoms {
		q[i] = integral.PointCharge{Q: float64(a.Z - a.ECPNElec), Pos: a.Coords}
	}
	return q
}

//NuclearRepulsion returns the classical Coulomb repulsion energy of the
//nuclei, in Hartree.
func (m *Molecule) NuclearRepulsion() float64 {
	var enuc float64
	for i := 0; i < len(m.Atoms); i++ {
		for j := i + 1; j < len(m.Atoms); j++ {
			zi := float64(m.Atoms[i].Z - m.Atoms[i].ECPNElec)
			zj := float64(m.Atoms[j].Z - m.Atoms[j].ECPNElec)
			var r2 float64
			for k := 0; k < 3; k++ {
				d := m.Atoms[i].Coords[k] - m.Atoms[j].Coords[k]
				r2 += d * d
			}
			enuc += zi * zj / math.Sqrt(r2)
		}
	}
	return enuc
}
