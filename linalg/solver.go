/*
 * solver.go, part of goscf.
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

package linalg

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/pgroup"
)

//Solver solves the generalized Roothaan-Hall eigenproblem F C = ε S C for
//one spin channel, given the orthogonalizer X derived from S: the Fock
//matrix is transformed to F' = Xᵗ F X, diagonalized, and the coefficients
//backtransformed as C = X C'. Callers must be indifferent to which concrete
//solver executed; eigenvalues come out in non-decreasing order.
type Solver interface {
	Solve(f mat.Matrix, x *mat.Dense) (c *mat.Dense, eps []float64, err error)
}

//EigenBackend diagonalizes a dense symmetric matrix. It is the hook for a
//specialized distributed eigensolver library; the default gathers to one
//rank and uses gonum.
type EigenBackend func(a *mat.SymDense) (vals []float64, vecs *mat.Dense, err error)

func gonumEigen(a *mat.SymDense) ([]float64, *mat.Dense, error) {
	return eigSym(a)
}

//DenseSolver runs the whole solve on the calling rank.
type DenseSolver struct{}

//Solve implements Solver.
func (DenseSolver) Solve(f mat.Matrix, x *mat.Dense) (*mat.Dense, []float64, error) {
	n, _ := x.Dims()
	fr, fc := f.Dims()
	if fr != n || fc != n {
		return nil, nil, errors.New("linalg: Fock/orthogonalizer dimension mismatch")
	}
	var fx, fp mat.Dense
	fx.Mul(f, x)              //n x rank
	fp.Mul(x.T(), &fx)        //rank x rank
	fpSym := denseToSym(&fp)  //cancel transform round-off
	vals, vecs, err := eigSym(fpSym)
	if err != nil {
		return nil, nil, err
	}
	var c mat.Dense
	c.Mul(x, vecs) //n x rank
	return &c, vals, nil
}

//denseToSym symmetrizes a nearly-symmetric dense matrix into a SymDense.
func denseToSym(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}

//GridSolver distributes the transform and backtransform block-cyclically
//over a 2-D process grid; the inner diagonalization goes through Eigen,
//which defaults to a gather-to-root gonum solve and can be swapped for a
//distributed eigensolver. A failure of the backend is fatal: partial
//distributed state cannot be recovered, so the error aborts the run.
type GridSolver struct {
	Grid  *pgroup.Grid
	Eigen EigenBackend
}

//Solve implements Solver. All ranks of the underlying group must call it
//with the same F and X; ranks outside the grid contribute nothing but keep
//the collectives aligned.
func (gs *GridSolver) Solve(f mat.Matrix, x *mat.Dense) (*mat.Dense, []float64, error) {
	g := gs.Grid
	n, rank := x.Dims()
	fr, fc := f.Dims()
	if fr != n || fc != n {
		return nil, nil, errors.New("linalg: Fock/orthogonalizer dimension mismatch")
	}

	//F' = Xᵗ F X, one owned block at a time
	fp := make([]float64, rank*rank)
	mb := g.MB()
	if g.Valid() {
		var fx mat.Dense
		fx.Mul(f, x) //shared prefactor; each rank contracts its own blocks
		for bi := 0; bi*mb < rank; bi++ {
			for bj := 0; bj*mb < rank; bj++ {
				if !g.OwnsBlock(bi, bj) {
					continue
				}
				ilo, ihi := blockRange(bi, mb, rank)
				jlo, jhi := blockRange(bj, mb, rank)
				for i := ilo; i < ihi; i++ {
					for j := jlo; j < jhi; j++ {
						var sum float64
						for k := 0; k < n; k++ {
							sum += x.At(k, i) * fx.At(k, j)
						}
						fp[i*rank+j] = sum
					}
				}
			}
		}
	}
	g.AllReduceSum(fp)

	//diagonalize on the grid root (or hand off to the configured backend)
	backend := gs.Eigen
	if backend == nil {
		backend = gonumEigen
	}
	vals := make([]float64, rank)
	cpData := make([]float64, rank*rank)
	status := make([]float64, 1)
	if g.Rank() == 0 {
		fpSym := denseToSym(mat.NewDense(rank, rank, fp))
		v, vecs, err := backend(fpSym)
		if err != nil {
			status[0] = 1
		} else {
			copy(vals, v)
			copy(cpData, vecs.RawMatrix().Data)
		}
	}
	g.Broadcast(status, 0)
	if status[0] != 0 {
		return nil, nil, errors.New("linalg: distributed eigensolver backend failed")
	}
	g.Broadcast(vals, 0)
	g.Broadcast(cpData, 0)
	cp := mat.NewDense(rank, rank, cpData)

	//backtransform C = X C', again by owned blocks
	cData := make([]float64, n*rank)
	if g.Valid() {
		for bi := 0; bi*mb < n; bi++ {
			for bj := 0; bj*mb < rank; bj++ {
				if !g.OwnsBlock(bi, bj) {
					continue
				}
				ilo, ihi := blockRange(bi, mb, n)
				jlo, jhi := blockRange(bj, mb, rank)
				for i := ilo; i < ihi; i++ {
					for j := jlo; j < jhi; j++ {
						var sum float64
						for k := 0; k < rank; k++ {
							sum += x.At(i, k) * cp.At(k, j)
						}
						cData[i*rank+j] = sum
					}
				}
			}
		}
	}
	g.AllReduceSum(cData)

	return mat.NewDense(n, rank, cData), vals, nil
}

func blockRange(b, mb, limit int) (lo, hi int) {
	lo = b * mb
	hi = lo + mb
	if hi > limit {
		hi = limit
	}
	return lo, hi
}
