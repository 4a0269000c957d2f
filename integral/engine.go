/*
 * engine.go, part of goscf.
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

//Package integral defines the one- and two-electron integral evaluator the
//SCF core is written against, plus a reference contracted-Gaussian engine.
//Production integral libraries are wrapped behind the Engine interface; the
//SCF algorithms never see a concrete engine type.
package integral

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/basis"
)

//PointCharge is a classical charge used for nuclear attraction terms and for
//the small fictitious charges the guess places on neighboring centers.
type PointCharge struct {
	Q   float64
	Pos [3]float64
}

//Engine evaluates integral blocks over shells on demand. Implementations
//must be safe for concurrent use by multiple goroutines, since Fock builds
//issue shell-quartet requests from every rank.
type Engine interface {

	//Overlap returns the overlap block <a|b>, dimensioned a.Size() x b.Size().
	Overlap(a, b *basis.Shell) (*mat.Dense, error)

	//Kinetic returns the kinetic-energy block <a|-1/2 ∇²|b>.
	Kinetic(a, b *basis.Shell) (*mat.Dense, error)

	//Nuclear returns the attraction block of a and b to the given charges.
	Nuclear(a, b *basis.Shell, charges []PointCharge) (*mat.Dense, error)

	//Repulsion returns the four-index Coulomb block (ab|cd) in row-major
	//order with the last index fastest, length a.Size()*b.Size()*c.Size()*d.Size().
	Repulsion(a, b, c, d *basis.Shell) ([]float64, error)

	//MaxL returns the highest angular momentum the engine supports.
	MaxL() int
}

//ErrUnsupportedShell is returned when an engine is asked for a block over
//shells of higher angular momentum than it supports. It is a configuration
//error: the calculation cannot proceed with this engine/basis combination.
type ErrUnsupportedShell struct {
	L, MaxL int
}

func (e ErrUnsupportedShell) Error() string {
	return fmt.Sprintf("integral: shell with l=%d exceeds engine limit l=%d", e.L, e.MaxL)
}
