/*
 * fock.go, part of goscf.
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
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/basis"
	"github.com/goscf/goscf/integral"
	"github.com/goscf/goscf/pgroup"
)

//fockPrecision is the quartet screening threshold: a quartet whose maximum
//possible contribution (density norm times Schwarz bounds) falls below it is
//skipped entirely.
var fockPrecision = math.Nextafter(1, 2) - 1

//DensityFitter replaces the direct four-index two-electron build with a
//fitted three-index contraction. External collaborator.
type DensityFitter interface {
	TwoElectron(da, db *mat.Dense) (ga, gb *mat.Dense, err error)
}

//XCIntegrator adds an exchange-correlation contribution for density
//functional calculations. External collaborator.
type XCIntegrator interface {
	Contribution(da, db *mat.Dense) (xca, xcb *mat.Dense, exc float64, err error)
}

//FockBuilder assembles Fock matrices from density matrices: the core
//Hamiltonian is computed once at construction, the two-electron part is
//rebuilt on every call from the screened quartet sequence, with the work
//distributed over the process group and merged by a collective sum.
type FockBuilder struct {
	bs        *basis.Set
	eng       integral.Engine
	scr       *Screener
	pg        pgroup.Group
	hcore     *mat.Dense
	overlap   *mat.Dense
	sameLOnly bool //restrict quartets to matching angular momenta (atomic guess)

	//optional collaborators
	DF DensityFitter
	XC XCIntegrator
}

//NewFockBuilder precomputes the overlap and core Hamiltonian (kinetic plus
//attraction to the given charges) over the significant shell pairs.
func NewFockBuilder(bs *basis.Set, eng integral.Engine, scr *Screener,
	charges []integral.PointCharge, pg pgroup.Group) (*FockBuilder, error) {
	fb := &FockBuilder{bs: bs, eng: eng, scr: scr, pg: pg}
	if err := fb.computeCore(charges); err != nil {
		return nil, errDecorate(err, "NewFockBuilder")
	}
	return fb, nil
}

//computeCore fills the overlap and core-Hamiltonian matrices pair by pair,
//mirroring each block across the diagonal.
func (fb *FockBuilder) computeCore(charges []integral.PointCharge) error {
	nbf := fb.bs.NBasis()
	fb.overlap = mat.NewDense(nbf, nbf, nil)
	fb.hcore = mat.NewDense(nbf, nbf, nil)

	for s1 := 0; s1 < fb.bs.Len(); s1++ {
		sh1 := fb.bs.Shell(s1)
		f1 := fb.bs.First(s1)
		for _, s2 := range fb.scr.Pairs(s1) {
			sh2 := fb.bs.Shell(s2)
			f2 := fb.bs.First(s2)

			ov, err := fb.eng.Overlap(sh1, sh2)
			if err != nil {
				return err
			}
			t, err := fb.eng.Kinetic(sh1, sh2)
			if err != nil {
				return err
			}
			v, err := fb.eng.Nuclear(sh1, sh2, charges)
			if err != nil {
				return err
			}
			for i := 0; i < sh1.Size(); i++ {
				for j := 0; j < sh2.Size(); j++ {
					fb.overlap.Set(f1+i, f2+j, ov.At(i, j))
					fb.overlap.Set(f2+j, f1+i, ov.At(i, j))
					h := t.At(i, j) + v.At(i, j)
					fb.hcore.Set(f1+i, f2+j, h)
					fb.hcore.Set(f2+j, f1+i, h)
				}
			}
		}
	}
	return nil
}

//Hcore returns the precomputed core Hamiltonian. The caller must not write
//to it.
func (fb *FockBuilder) Hcore() *mat.Dense { return fb.hcore }

//Overlap returns the precomputed overlap matrix.
func (fb *FockBuilder) Overlap() *mat.Dense { return fb.overlap }

//BuildG computes the two-electron contribution for both spin channels. For
//restricted references pass the same matrix for da and db. Every rank must
//call it with the same densities; the quartet work is split round-robin and
//the partial accumulators merged with a collective sum.
func (fb *FockBuilder) BuildG(da, db *mat.Dense) (ga, gb *mat.Dense, err error) {
	nbf := fb.bs.NBasis()
	gaData := make([]float64, nbf*nbf)
	gbData := make([]float64, nbf*nbf)
	dnorm := shellBlockNorm(fb.bs, da)
	dnorm.Add(dnorm, shellBlockNorm(fb.bs, db))

	seq := newQuartetSeq(fb.scr)
	iq := -1
	for {
		q, ok := seq.Next()
		if !ok {
			break
		}
		iq++
		if iq%fb.pg.Size() != fb.pg.Rank() {
			continue
		}

		sh1, sh2 := fb.bs.Shell(q.S1), fb.bs.Shell(q.S2)
		sh3, sh4 := fb.bs.Shell(q.S3), fb.bs.Shell(q.S4)

		do12 := sh1.L == sh2.L
		do34 := sh3.L == sh4.L
		do13 := sh1.L == sh3.L
		do24 := sh2.L == sh4.L
		do14 := sh1.L == sh4.L
		do23 := sh2.L == sh3.L
		doCoul, doExch := true, true
		if fb.sameLOnly {
			doCoul = do12 || do34
			doExch = (do13 && do24) || (do14 && do23)
			if !doCoul && !doExch {
				continue
			}
		}

		dmax := dnorm.At(q.S1, q.S2)
		for _, p := range [][2]int{{q.S1, q.S3}, {q.S2, q.S3}, {q.S1, q.S4}, {q.S2, q.S4}, {q.S3, q.S4}} {
			if v := dnorm.At(p[0], p[1]); v > dmax {
				dmax = v
			}
		}
		if dmax*fb.scr.K.At(q.S1, q.S2)*fb.scr.K.At(q.S3, q.S4) < fockPrecision {
			continue
		}

		block, err := fb.eng.Repulsion(sh1, sh2, sh3, sh4)
		if err != nil {
			return nil, nil, errDecorate(err, "FockBuilder.BuildG")
		}

		b1, n1 := fb.bs.First(q.S1), sh1.Size()
		b2, n2 := fb.bs.First(q.S2), sh2.Size()
		b3, n3 := fb.bs.First(q.S3), sh3.Size()
		b4, n4 := fb.bs.First(q.S4), sh4.Size()

		idx := 0
		for f1 := 0; f1 < n1; f1++ {
			bf1 := b1 + f1
			for f2 := 0; f2 < n2; f2++ {
				bf2 := b2 + f2
				for f3 := 0; f3 < n3; f3++ {
					bf3 := b3 + f3
					for f4 := 0; f4 < n4; f4++ {
						bf4 := b4 + f4
						val := block[idx] * q.Deg
						idx++

						if doCoul {
							g12 := 0.5 * (da.At(bf3, bf4) + db.At(bf3, bf4)) * val
							g34 := 0.5 * (da.At(bf1, bf2) + db.At(bf1, bf2)) * val
							gaData[bf1*nbf+bf2] += g12
							gaData[bf3*nbf+bf4] += g34
							gbData[bf1*nbf+bf2] += g12
							gbData[bf3*nbf+bf4] += g34
						}
						if doExch {
							gaData[bf2*nbf+bf3] -= 0.25 * da.At(bf1, bf4) * val
							gaData[bf2*nbf+bf4] -= 0.25 * da.At(bf1, bf3) * val
							gaData[bf1*nbf+bf3] -= 0.25 * da.At(bf2, bf4) * val
							gaData[bf1*nbf+bf4] -= 0.25 * da.At(bf2, bf3) * val

							gbData[bf2*nbf+bf3] -= 0.25 * db.At(bf1, bf4) * val
							gbData[bf2*nbf+bf4] -= 0.25 * db.At(bf1, bf3) * val
							gbData[bf1*nbf+bf3] -= 0.25 * db.At(bf2, bf4) * val
							gbData[bf1*nbf+bf4] -= 0.25 * db.At(bf2, bf3) * val
						}
					}
				}
			}
		}
	}

	fb.pg.AllReduceSum(gaData)
	fb.pg.AllReduceSum(gbData)

	ga = symmetrized(mat.NewDense(nbf, nbf, gaData))
	gb = symmetrized(mat.NewDense(nbf, nbf, gbData))
	return ga, gb, nil
}

//BuildFock returns the Fock matrices for the current densities: core
//Hamiltonian plus two-electron part (direct or density-fitted), plus the
//exchange-correlation contribution when one is configured.
func (fb *FockBuilder) BuildFock(da, db *mat.Dense) (fa, fb2 *mat.Dense, err error) {
	var ga, gb *mat.Dense
	if fb.DF != nil {
		ga, gb, err = fb.DF.TwoElectron(da, db)
	} else {
		ga, gb, err = fb.BuildG(da, db)
	}
	if err != nil {
		return nil, nil, errDecorate(err, "FockBuilder.BuildFock")
	}
	fa = mat.NewDense(fb.bs.NBasis(), fb.bs.NBasis(), nil)
	fa.Add(fb.hcore, ga)
	fb2 = mat.NewDense(fb.bs.NBasis(), fb.bs.NBasis(), nil)
	fb2.Add(fb.hcore, gb)

	if fb.XC != nil {
		xca, xcb, _, err := fb.XC.Contribution(da, db)
		if err != nil {
			return nil, nil, errDecorate(err, "FockBuilder.BuildFock")
		}
		fa.Add(fa, xca)
		fb2.Add(fb2, xcb)
	}
	return fa, fb2, nil
}

//symmetrized averages a matrix with its transpose, cancelling the round-off
//asymmetry of the scatter loop.
func symmetrized(g *mat.Dense) *mat.Dense {
	n, _ := g.Dims()
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, 0.5*(g.At(i, j)+g.At(j, i)))
		}
	}
	return out
}
