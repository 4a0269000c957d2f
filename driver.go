/*
 * driver.go, part of goscf.
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
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/goscf/goscf/basis"
	"github.com/goscf/goscf/integral"
	"github.com/goscf/goscf/linalg"
	"github.com/goscf/goscf/pgroup"
)

//gapRecoveryThreshold and gapRecoveryShift control the level-shift latch:
//when the gap drops below the threshold without a user-requested shift, the
//recovery shift switches on for the rest of the run.
const (
	gapRecoveryThreshold = 1e-2
	gapRecoveryShift     = 0.5
)

//Result carries the outputs of a calculation for downstream consumers:
//densities, orbitals, Fock and core matrices, the orthogonalizer and the
//energies. For restricted references the beta fields alias the alpha ones.
type Result struct {
	Energy     float64 //total energy including nuclear repulsion, Hartree
	Enuc       float64
	Gap        float64 //last HOMO-LUMO gap estimate
	Converged  bool
	Iterations int

	Da, Db     *mat.Dense
	Ca, Cb     *mat.Dense
	EpsA, EpsB []float64
	Fa, Fb     *mat.Dense
	H, S       *mat.Dense
	X          *mat.Dense
}

//Driver owns the SCF iteration: guess, Fock build, diagonalization, density
//update and convergence check. Every rank of PG runs the same loop; the
//level-shift latch and convergence decisions are taken from rank-0 data and
//broadcast, so the ranks can never disagree on the iteration state.
type Driver struct {
	Mol    *Molecule
	BS     *basis.Set
	Eng    integral.Engine
	Opts   *Options
	PG     pgroup.Group
	Logger *log.Logger //nil means quiet

	vars *SCFVars
}

//Vars exposes the iteration state, populated during Run.
func (dr *Driver) Vars() *SCFVars { return dr.vars }

func (dr *Driver) logf(format string, args ...interface{}) {
	if dr.Logger != nil && dr.PG.Rank() == 0 {
		dr.Logger.Printf(format, args...)
	}
}

//Run executes the whole calculation. A converged run returns a nil error;
//exceeding the iteration cap returns the best available Result together
//with a non-nil error. Fatal linear-algebra or configuration problems abort
//with only the error set.
func (dr *Driver) Run() (*Result, error) {
	o := dr.Opts
	if err := o.Validate(); err != nil {
		return nil, errDecorate(err, "Driver.Run")
	}
	nalpha, nbeta, err := o.Occupations(dr.Mol)
	if err != nil {
		return nil, errDecorate(err, "Driver.Run")
	}
	uhf := o.Unrestricted
	dr.vars = newSCFVars(o)

	tiling := basis.TileAO(dr.BS, o.TileSize, o.UserTileSize)
	dr.logf("nbf=%d shells=%d tiles=%d", dr.BS.NBasis(), dr.BS.Len(), tiling.NTiles())

	scr, err := NewScreener(dr.BS, dr.Eng)
	if err != nil {
		return nil, errDecorate(err, "Driver.Run")
	}
	dr.logf("significant shell pairs: %d of %d", scr.NPairs(), dr.BS.Len()*(dr.BS.Len()+1)/2)

	fb, err := NewFockBuilder(dr.BS, dr.Eng, scr, dr.Mol.PointCharges(), dr.PG)
	if err != nil {
		return nil, errDecorate(err, "Driver.Run")
	}
	h := fb.Hcore()
	s := fb.Overlap()

	//the eigensolve path follows the group size: one rank solves densely,
	//more spread the transforms over a block-cyclic grid sized by the tiling
	var solver linalg.Solver = linalg.DenseSolver{}
	var ortho *linalg.Orthogonalizer
	if dr.PG.Size() > 1 {
		grid := pgroup.NewGrid(dr.PG, tiling.TileSize)
		solver = &linalg.GridSolver{Grid: grid}
		ortho, err = linalg.OrthogonalizeGrid(grid, asSym(s), o.LindepTol)
	} else {
		ortho, err = linalg.Orthogonalize(asSym(s), o.LindepTol)
	}
	if err != nil {
		return nil, errDecorate(err, "Driver.Run")
	}
	dr.logf("orthogonalizer rank %d of %d, cond(S)=%.3e", ortho.Rank, dr.BS.NBasis(), ortho.CondS)

	da, db, err := NewSADGuess(dr.Mol, dr.BS, dr.Eng, dr.PG, o).Build()
	if err != nil {
		return nil, errDecorate(err, "Driver.Run")
	}

	res := &Result{
		Enuc: dr.Mol.NuclearRepulsion(),
		H:    h,
		S:    s,
		X:    ortho.X,
	}

	var energies []float64
	eLast := 0.0
	dLastA := mat.NewDense(dr.BS.NBasis(), dr.BS.NBasis(), nil)
	dLastB := mat.NewDense(dr.BS.NBasis(), dr.BS.NBasis(), nil)

	for iter := 1; iter <= o.MaxIter; iter++ {
		res.Iterations = iter
		dLastA.Copy(da)
		dLastB.Copy(db)

		fa, fbeta, err := fb.BuildFock(da, db)
		if err != nil {
			return nil, errDecorate(err, "Driver.Run")
		}
		if dr.vars.Lshift > 0 {
			lval := dr.vars.Lshift
			if !uhf {
				lval *= 0.5
			}
			applyDensityShift(fa, s, da, lval)
			if uhf {
				applyDensityShift(fbeta, s, db, lval)
			}
		}

		ca, epsA, err := solver.Solve(fa, ortho.X)
		if err != nil {
			return nil, errDecorate(err, "Driver.Run")
		}
		cb, epsB := ca, epsA
		if uhf {
			cb, epsB, err = solver.Solve(fbeta, ortho.X)
			if err != nil {
				return nil, errDecorate(err, "Driver.Run")
			}
		}
		dr.updateGap(epsA, epsB, nalpha, nbeta, uhf)

		fixPhase(ca)
		if uhf {
			fixPhase(cb)
		}

		if uhf {
			da = densityFromOrbitals(ca, nalpha, 1.0)
			db = densityFromOrbitals(cb, nbeta, 1.0)
		} else {
			da = densityFromOrbitals(ca, nalpha, 2.0)
			db = da
		}
		if o.Damp > 0 {
			dampToward(da, dLastA, o.Damp)
			if uhf {
				dampToward(db, dLastB, o.Damp)
			}
		}

		var ehf float64
		if uhf {
			ehf = 0.5 * (traceProductSum(da, h, fa) + traceProductSum(db, h, fbeta))
		} else {
			ehf = 0.5 * traceProductSum(da, h, fa)
		}
		etot := ehf + res.Enuc
		ediff := etot - eLast
		eLast = etot
		energies = append(energies, etot)

		rmsd := densityRMS(da, dLastA)
		if uhf {
			rmsd = math.Max(rmsd, densityRMS(db, dLastB))
		}

		dr.logf("iter %3d  E=%.10f  dE=%+.3e  rmsD=%.3e  gap=%.4f  lshift=%.2f",
			iter, etot, ediff, rmsd, dr.vars.HLGap, dr.vars.Lshift)

		res.Energy = etot
		res.Gap = dr.vars.HLGap
		res.Da, res.Db = da, db
		res.Ca, res.Cb = ca, cb
		res.EpsA, res.EpsB = epsA, epsB
		res.Fa, res.Fb = fa, fbeta

		if iter > 1 && math.Abs(ediff) < o.ConvE && rmsd < o.ConvD {
			res.Converged = true
			break
		}
	}

	if o.PlotFile != "" && dr.PG.Rank() == 0 {
		if err := ConvergencePlot(energies, o.PlotFile); err != nil {
			dr.logf("convergence plot failed: %v", err)
		}
	}

	if !res.Converged {
		return res, newError(
			fmt.Sprintf("goSCF: SCF did not converge in %d iterations", o.MaxIter), "Driver.Run")
	}
	return res, nil
}

//updateGap recomputes the HOMO-LUMO gap estimate and fires the level-shift
//latch. The latch is monotonic: once the recovery shift engages it stays on
//for the rest of the run, and the gap is no longer re-estimated.
func (dr *Driver) updateGap(epsA, epsB []float64, nalpha, nbeta int, uhf bool) {
	if dr.vars.LshiftReset {
		return
	}
	gap := math.Inf(1)
	if nalpha > 0 && nalpha < len(epsA) {
		gap = epsA[nalpha] - epsA[nalpha-1]
	}
	if uhf && nbeta > 0 && nbeta < len(epsB) {
		gap = math.Min(gap, epsB[nbeta]-epsB[nbeta-1])
	}
	gap -= dr.vars.Lshift

	//rank 0 decides, everyone follows
	buf := []float64{gap}
	dr.PG.Broadcast(buf, 0)
	dr.vars.HLGap = buf[0]
	if buf[0] < gapRecoveryThreshold && !dr.Opts.UserLshift {
		dr.vars.LshiftReset = true
		dr.vars.Lshift = gapRecoveryShift
		dr.logf("gap %.4f below %.2f, engaging level shift %.2f",
			buf[0], gapRecoveryThreshold, gapRecoveryShift)
	}
}

//fixPhase flips orbital columns so the largest-magnitude coefficient of each
//is positive, removing the sign arbitrariness of the eigensolver.
func fixPhase(c *mat.Dense) {
	rows, cols := c.Dims()
	for j := 0; j < cols; j++ {
		max, abs := math.Inf(-1), 0.0
		for i := 0; i < rows; i++ {
			v := c.At(i, j)
			if v > max {
				max = v
			}
			if a := math.Abs(v); a > abs {
				abs = a
			}
		}
		if max != abs {
			for i := 0; i < rows; i++ {
				c.Set(i, j, -c.At(i, j))
			}
		}
	}
}

//densityFromOrbitals forms D = dfac * C_occ * C_occ^T.
func densityFromOrbitals(c *mat.Dense, nocc int, dfac float64) *mat.Dense {
	n, cols := c.Dims()
	if nocc > cols {
		nocc = cols
	}
	d := mat.NewDense(n, n, nil)
	if nocc > 0 {
		occ := c.Slice(0, n, 0, nocc)
		d.Mul(occ, occ.T())
		d.Scale(dfac, d)
	}
	return d
}

//dampToward pulls d back toward dLast by the damping fraction.
func dampToward(d, dLast *mat.Dense, damp float64) {
	var diff mat.Dense
	diff.Sub(d, dLast)
	diff.Scale(damp, &diff)
	d.Sub(d, &diff)
}

//traceProductSum returns sum_ij D_ij * (H+F)_ij, the electronic energy
//contraction for one spin channel.
func traceProductSum(d, h, f *mat.Dense) float64 {
	var hf mat.Dense
	hf.Add(h, f)
	return floats.Dot(d.RawMatrix().Data, hf.RawMatrix().Data)
}

//densityRMS returns the root-mean-square elementwise change between two
//densities.
func densityRMS(d, dLast *mat.Dense) float64 {
	a := d.RawMatrix().Data
	b := dLast.RawMatrix().Data
	sq := make([]float64, len(a))
	for i := range sq {
		diff := a[i] - b[i]
		sq[i] = diff * diff
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
