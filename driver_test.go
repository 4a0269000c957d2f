/*
 * driver_test.go, part of goscf.
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
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/integral"
	"github.com/goscf/goscf/pgroup"
)

//TestDriverH2 runs the whole machinery on H2/STO-3G and checks the energy
//against the textbook value of -1.1167 Hartree.
func TestDriverH2(Te *testing.T) {
	mol, bs := h2System(Te)
	dr := &Driver{
		Mol:  mol,
		BS:   bs,
		Eng:  integral.GaussEngine{},
		Opts: DefaultOptions(),
		PG:   pgroup.Local{},
	}
	res, err := dr.Run()
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Converged {
		Te.Fatal("H2 did not converge")
	}
	if math.Abs(res.Energy-(-1.1167)) > 5e-3 {
		Te.Errorf("H2 energy: got %v want about -1.1167", res.Energy)
	}
	if math.Abs(res.Enuc-1.0/1.4) > 1e-12 {
		Te.Errorf("H2 nuclear repulsion: got %v", res.Enuc)
	}

	//eigenvalues come out sorted, and the gap matches their spacing
	for i := 1; i < len(res.EpsA); i++ {
		if res.EpsA[i] < res.EpsA[i-1] {
			Te.Errorf("eigenvalues out of order at %d: %v", i, res.EpsA)
		}
	}
	if math.Abs(res.Gap-(res.EpsA[1]-res.EpsA[0])) > 1e-12 {
		Te.Errorf("gap %v does not match eigenvalue spacing %v", res.Gap, res.EpsA[1]-res.EpsA[0])
	}

	//X^T S X must be the identity on the retained subspace
	var xs, xsx mat.Dense
	xs.Mul(res.X.T(), res.S)
	xsx.Mul(&xs, res.X)
	r, c := xsx.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(xsx.At(i, j)-want) > 1e-8 {
				Te.Errorf("X^T S X (%d,%d): got %v want %v", i, j, xsx.At(i, j), want)
			}
		}
	}

	//the phase convention makes the bonding MO all-positive
	if res.Ca.At(0, 0) <= 0 || res.Ca.At(1, 0) <= 0 {
		Te.Errorf("bonding orbital not phase-fixed: %v %v", res.Ca.At(0, 0), res.Ca.At(1, 0))
	}
}

//TestDriverTeam repeats the H2 run on a 4-rank in-process group and checks
//the distributed paths reproduce the single-rank energy.
func TestDriverTeam(Te *testing.T) {
	serial := func() float64 {
		mol, bs := h2System(Te)
		dr := &Driver{Mol: mol, BS: bs, Eng: integral.GaussEngine{},
			Opts: DefaultOptions(), PG: pgroup.Local{}}
		res, err := dr.Run()
		if err != nil {
			Te.Fatal(err)
		}
		return res.Energy
	}()

	members := pgroup.NewTeam(4)
	energies := make([]float64, 4)
	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i, m := range members {
		wg.Add(1)
		go func(i int, m *pgroup.Member) {
			defer wg.Done()
			mol, bs := h2System(Te)
			dr := &Driver{Mol: mol, BS: bs, Eng: integral.GaussEngine{},
				Opts: DefaultOptions(), PG: m}
			res, err := dr.Run()
			if err != nil {
				errs[i] = err
				return
			}
			energies[i] = res.Energy
		}(i, m)
	}
	wg.Wait()
	for i := range errs {
		if errs[i] != nil {
			Te.Fatalf("rank %d: %v", i, errs[i])
		}
		if math.Abs(energies[i]-serial) > 1e-8 {
			Te.Errorf("rank %d energy %v differs from serial %v", i, energies[i], serial)
		}
	}
}

func TestDriverIterationCap(Te *testing.T) {
	mol, bs := h2System(Te)
	o := DefaultOptions()
	o.MaxIter = 1
	dr := &Driver{Mol: mol, BS: bs, Eng: integral.GaussEngine{}, Opts: o, PG: pgroup.Local{}}
	res, err := dr.Run()
	if err == nil {
		Te.Error("expected a non-convergence error after one iteration")
	}
	if res == nil || res.Converged {
		Te.Error("iteration cap must still return the last iterate, unconverged")
	}
}

//TestLevelShiftLatch drives the gap estimator directly: a near-degenerate
//spectrum engages the recovery shift, and the latch never releases.
func TestLevelShiftLatch(Te *testing.T) {
	o := DefaultOptions()
	dr := &Driver{Opts: o, PG: pgroup.Local{}}
	dr.vars = newSCFVars(o)

	eps := []float64{-0.5, -0.498, 0.3}
	dr.updateGap(eps, eps, 1, 1, false)
	if !dr.vars.LshiftReset {
		Te.Fatal("gap 0.002 did not engage the recovery shift")
	}
	if dr.vars.Lshift != gapRecoveryShift {
		Te.Errorf("recovery shift: got %v want %v", dr.vars.Lshift, gapRecoveryShift)
	}

	//a healthy gap later must not release the latch
	wide := []float64{-0.5, 0.5, 1.0}
	dr.updateGap(wide, wide, 1, 1, false)
	if !dr.vars.LshiftReset || dr.vars.Lshift != gapRecoveryShift {
		Te.Error("latch released after engaging")
	}
}

func TestLevelShiftUserOverride(Te *testing.T) {
	o := DefaultOptions()
	o.Lshift = 0.2
	o.UserLshift = true
	dr := &Driver{Opts: o, PG: pgroup.Local{}}
	dr.vars = newSCFVars(o)

	eps := []float64{-0.5, -0.499, 0.3}
	dr.updateGap(eps, eps, 1, 1, false)
	if dr.vars.LshiftReset {
		Te.Error("latch fired despite a user-chosen shift")
	}
	if dr.vars.Lshift != 0.2 {
		Te.Errorf("user shift changed: got %v", dr.vars.Lshift)
	}
	//the reported gap is corrected for the active shift
	want := (eps[1] - eps[0]) - 0.2
	if math.Abs(dr.vars.HLGap-want) > 1e-12 {
		Te.Errorf("shift-corrected gap: got %v want %v", dr.vars.HLGap, want)
	}
}

func TestLoadOptions(Te *testing.T) {
	dir := Te.TempDir()
	path := filepath.Join(dir, "scf.toml")
	input := []byte("charge = 1\nmaxiter = 80\ntilesize = 12\nlshift = 0.3\n")
	if err := os.WriteFile(path, input, 0644); err != nil {
		Te.Fatal(err)
	}
	o, err := LoadOptions(path)
	if err != nil {
		Te.Fatal(err)
	}
	if o.Charge != 1 || o.MaxIter != 80 || o.TileSize != 12 || o.Lshift != 0.3 {
		Te.Errorf("options not read: %+v", o)
	}
	if !o.UserTileSize || !o.UserLshift {
		Te.Error("explicitly set tilesize/lshift not recorded as user-chosen")
	}
	if o.ConvE != 1e-8 || o.Multiplicity != 1 {
		Te.Error("absent options did not keep their defaults")
	}

	//an empty file is all defaults, nothing user-chosen
	empty := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		Te.Fatal(err)
	}
	o, err = LoadOptions(empty)
	if err != nil {
		Te.Fatal(err)
	}
	if o.UserTileSize || o.UserLshift {
		Te.Error("defaults flagged as user-chosen")
	}
}

func TestOptionsValidate(Te *testing.T) {
	bad := []func(*Options){
		func(o *Options) { o.MaxIter = 0 },
		func(o *Options) { o.ConvE = 0 },
		func(o *Options) { o.ConvD = -1 },
		func(o *Options) { o.TileSize = 0 },
		func(o *Options) { o.LindepTol = 0 },
		func(o *Options) { o.Lshift = -0.5 },
		func(o *Options) { o.Damp = 1.0 },
		func(o *Options) { o.Multiplicity = 0 },
	}
	for i, mutate := range bad {
		o := DefaultOptions()
		mutate(o)
		if err := o.Validate(); err == nil {
			Te.Errorf("case %d: invalid options passed validation", i)
		}
	}
	if err := DefaultOptions().Validate(); err != nil {
		Te.Errorf("defaults fail validation: %v", err)
	}
}

func TestOccupations(Te *testing.T) {
	mol, _ := h2System(Te)
	o := DefaultOptions()
	na, nb, err := o.Occupations(mol)
	if err != nil {
		Te.Fatal(err)
	}
	if na != 1 || nb != 1 {
		Te.Errorf("H2 occupations: got %d/%d want 1/1", na, nb)
	}

	o.Multiplicity = 3 //triplet H2
	na, nb, err = o.Occupations(mol)
	if err != nil {
		Te.Fatal(err)
	}
	if na != 2 || nb != 0 {
		Te.Errorf("triplet H2 occupations: got %d/%d want 2/0", na, nb)
	}

	o.Multiplicity = 2 //impossible for an even electron count
	if _, _, err = o.Occupations(mol); err == nil {
		Te.Error("inconsistent multiplicity accepted")
	}
}

func TestConvergencePlot(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "conv.png")
	err := ConvergencePlot([]float64{-1.05, -1.11, -1.116, -1.1167}, path)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		Te.Errorf("plot file not written: %v", err)
	}
	if ConvergencePlot(nil, path) == nil {
		Te.Error("empty trace accepted")
	}
}
