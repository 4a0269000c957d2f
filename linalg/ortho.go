/*
 * ortho.go, part of goscf.
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

//Package linalg holds the generalized-eigenproblem machinery of the SCF
//core: the overlap-conditioning orthogonalizer and the Roothaan-Hall solver
//strategies. Each piece exists in a single-rank dense form and in a
//block-cyclic form distributed over a 2-D process grid; the two paths share
//one contract and must agree numerically.
package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/pgroup"
)

//ErrRankCollapse signals that conditioning removed every direction of the
//overlap metric. The basis is unusable and the calculation cannot proceed.
var ErrRankCollapse = errors.New("linalg: overlap matrix rank collapsed to zero after conditioning")

//ErrNotSymmetric signals an overlap matrix that is not numerically
//symmetric. This is a configuration error, not something to recover from.
var ErrNotSymmetric = errors.New("linalg: overlap matrix is not symmetric within tolerance")

const symTol = 1e-10

//Orthogonalizer is the basis-conditioning transform X with Xᵗ·S·X = I.
//Rank may be below the original basis dimension when near-linear
//dependencies were removed; the condition numbers are diagnostics.
type Orthogonalizer struct {
	X       *mat.Dense //nbf_orig x Rank
	Rank    int
	CondS   float64
	CondXtX float64
}

//checkSymmetric verifies numerical symmetry of a square matrix.
func checkSymmetric(s mat.Matrix) error {
	r, c := s.Dims()
	if r != c {
		return fmt.Errorf("linalg: overlap matrix is %dx%d, not square", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < i; j++ {
			if math.Abs(s.At(i, j)-s.At(j, i)) > symTol {
				return ErrNotSymmetric
			}
		}
	}
	return nil
}

//eigSym wraps the dense symmetric eigendecomposition; eigenvalues come out
//in ascending order.
func eigSym(s mat.Symmetric) ([]float64, *mat.Dense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(s, true); !ok {
		return nil, nil, errors.New("linalg: symmetric eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return vals, &vecs, nil
}

//buildX forms the canonical orthogonalizer from the eigendecomposition of
//S, dropping directions with eigenvalue below the linear-dependence
//threshold.
func buildX(vals []float64, vecs *mat.Dense, lindepTol float64) (*Orthogonalizer, error) {
	n := len(vals)
	keep := 0
	for _, v := range vals {
		if v >= lindepTol {
			keep++
		}
	}
	if keep == 0 {
		return nil, ErrRankCollapse
	}
	first := n - keep //ascending order: retained block is the tail
	x := mat.NewDense(n, keep, nil)
	for j := 0; j < keep; j++ {
		scale := 1.0 / math.Sqrt(vals[first+j])
		for i := 0; i < n; i++ {
			x.Set(i, j, vecs.At(i, first+j)*scale)
		}
	}
	o := &Orthogonalizer{
		X:       x,
		Rank:    keep,
		CondS:   vals[n-1] / vals[0],
		CondXtX: vals[n-1] / vals[first],
	}
	return o, nil
}

//Orthogonalize computes X such that XᵗSX = I on a single rank, removing
//eigen-directions of S whose eigenvalue falls below lindepTol.
func Orthogonalize(s mat.Symmetric, lindepTol float64) (*Orthogonalizer, error) {
	if err := checkSymmetric(s); err != nil {
		return nil, err
	}
	vals, vecs, err := eigSym(s)
	if err != nil {
		return nil, err
	}
	return buildX(vals, vecs, lindepTol)
}

//OrthogonalizeGrid computes the same transform with the column scaling
//distributed block-cyclically over the grid. Rank 0 performs the
//eigendecomposition (or the pluggable backend of a GridSolver does, when one
//is configured for the solve step); every grid rank then forms the column
//blocks it owns and the result is merged with a collective sum. Ranks
//outside the grid idle at the collectives. Dense and grid paths agree up to
//sign freedom inside degenerate subspaces, which is immaterial since X is
//only ever applied, never inspected.
func OrthogonalizeGrid(g *pgroup.Grid, s mat.Symmetric, lindepTol float64) (*Orthogonalizer, error) {
	n, _ := s.Dims()

	//rank 0 decomposes and validates, then shares outcome with the group
	var vals []float64
	vecData := make([]float64, n*n)
	status := make([]float64, 1)
	vals = make([]float64, n)
	if g.Rank() == 0 {
		if err := checkSymmetric(s); err != nil {
			status[0] = 1
		} else if v, vecs, err := eigSym(s); err != nil {
			status[0] = 2
		} else {
			copy(vals, v)
			copy(vecData, vecs.RawMatrix().Data)
		}
	}
	g.Broadcast(status, 0)
	switch status[0] {
	case 1:
		return nil, ErrNotSymmetric
	case 2:
		return nil, errors.New("linalg: symmetric eigendecomposition failed")
	}
	g.Broadcast(vals, 0)
	g.Broadcast(vecData, 0)
	vecs := mat.NewDense(n, n, vecData)

	keep := 0
	for _, v := range vals {
		if v >= lindepTol {
			keep++
		}
	}
	if keep == 0 {
		return nil, ErrRankCollapse
	}
	first := n - keep

	//each grid rank scales the column blocks it owns; zero elsewhere, then
	//merge with a collective sum
	xData := make([]float64, n*keep)
	mb := g.MB()
	if g.Valid() {
		for bj := 0; bj*mb < keep; bj++ {
			for bi := 0; bi*mb < n; bi++ {
				if !g.OwnsBlock(bi, bj) {
					continue
				}
				jmax := (bj + 1) * mb
				if jmax > keep {
					jmax = keep
				}
				imax := (bi + 1) * mb
				if imax > n {
					imax = n
				}
				for j := bj * mb; j < jmax; j++ {
					scale := 1.0 / math.Sqrt(vals[first+j])
					for i := bi * mb; i < imax; i++ {
						xData[i*keep+j] = vecs.At(i, first+j) * scale
					}
				}
			}
		}
	}
	g.AllReduceSum(xData)

	o := &Orthogonalizer{
		X:       mat.NewDense(n, keep, xData),
		Rank:    keep,
		CondS:   vals[n-1] / vals[0],
		CondXtX: vals[n-1] / vals[first],
	}
	return o, nil
}
