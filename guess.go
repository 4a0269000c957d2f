/*
 * guess.go, part of goscf.
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
	"github.com/goscf/goscf/linalg"
	"github.com/goscf/goscf/pgroup"
)

const (
	sadDamp       = 0.3  //damping toward the previous atomic density
	sadShift      = 0.05 //density-dependent shift applied after the first iteration
	sadConv       = 1e-5 //atomic density change norm for convergence
	sadMaxIter    = 200  //hard cap; the best available density is accepted silently
	sadLiftCharge = 0.05 //fictitious charge on other centers for custom configurations
)

//SADGuess builds the superposition-of-atomic-densities initial density: one
//small SCF per unique element, assembled block-diagonally into the molecular
//density. The atomic solves run on rank 0 and the result is broadcast, so
//every rank starts the molecular iteration from the same guess.
type SADGuess struct {
	mol  *Molecule
	bs   *basis.Set
	eng  integral.Engine
	pg   pgroup.Group
	opts *Options
}

//NewSADGuess prepares a guess generator for the given molecule and basis.
func NewSADGuess(mol *Molecule, bs *basis.Set, eng integral.Engine, pg pgroup.Group, opts *Options) *SADGuess {
	return &SADGuess{mol: mol, bs: bs, eng: eng, pg: pg, opts: opts}
}

//Build returns the guess density per spin channel. For restricted references
//both returns are the same matrix, normalized to the full electron count;
//for unrestricted ones the channels are separate. Atoms of an element
//already solved reuse the cached density block.
func (g *SADGuess) Build() (da, db *mat.Dense, err error) {
	nbf := g.bs.NBasis()
	daData := make([]float64, nbf*nbf)
	dbData := make([]float64, nbf*nbf)
	status := make([]float64, 1)

	if g.pg.Rank() == 0 {
		if err := g.buildLocal(daData, dbData); err != nil {
			status[0] = 1
			g.pg.Broadcast(status, 0)
			return nil, nil, errDecorate(err, "SADGuess.Build")
		}
	}
	g.pg.Broadcast(status, 0)
	if status[0] != 0 {
		return nil, nil, newError("goSCF: guess construction failed on rank 0", "SADGuess.Build")
	}
	g.pg.Broadcast(daData, 0)
	g.pg.Broadcast(dbData, 0)

	da = mat.NewDense(nbf, nbf, daData)
	db = mat.NewDense(nbf, nbf, dbData)
	if !g.opts.Unrestricted {
		//combine the channels into one total density
		da.Add(da, db)
		db = da
	}
	return da, db, nil
}

//buildLocal runs the per-atom solves and writes the diagonal blocks of the
//alpha and beta guess densities into the given row-major buffers.
func (g *SADGuess) buildLocal(daData, dbData []float64) error {
	nbf := g.bs.NBasis()
	cache := map[string]int{} //element symbol -> offset of the solved block

	for iatom, atom := range g.mol.Atoms {
		sub, offset, err := g.bs.AtomSubset(iatom)
		if err != nil {
			return err
		}
		nao := sub.NBasis()

		if prev, ok := cache[atom.Symbol]; ok {
			for i := 0; i < nao; i++ {
				for j := 0; j < nao; j++ {
					daData[(offset+i)*nbf+(offset+j)] = daData[(prev+i)*nbf+(prev+j)]
					dbData[(offset+i)*nbf+(offset+j)] = dbData[(prev+i)*nbf+(prev+j)]
				}
			}
			continue
		}

		dA, dB, err := g.solveAtom(iatom, atom, sub)
		if err != nil {
			return err
		}
		for i := 0; i < nao; i++ {
			for j := 0; j < nao; j++ {
				daData[(offset+i)*nbf+(offset+j)] = dA.At(i, j)
				dbData[(offset+i)*nbf+(offset+j)] = dB.At(i, j)
			}
		}
		cache[atom.Symbol] = offset
	}
	return nil
}

//solveAtom runs the fixed-point SCF of one isolated atom in its sub-basis.
//All scratch state is scoped to this call and released with it.
func (g *SADGuess) solveAtom(iatom int, atom *Atom, sub *basis.Set) (dA, dB *mat.Dense, err error) {
	nao := sub.NBasis()

	occ := occupationVector(atom.Z)
	if atom.ECPNElec > 0 {
		if err := reduceForECP(&occ, atom.ECPNElec); err != nil {
			return nil, nil, err
		}
	}

	//per-element configuration overrides; fictitious charges on the other
	//centers lift the artificial degeneracy of the isolated-atom problem
	custom := false
	var charges []integral.PointCharge
	var naAtom, nbAtom int
	zeff := atom.Z - atom.ECPNElec
	charges = append(charges, integral.PointCharge{Q: float64(zeff), Pos: atom.Coords})
	if ov, ok := g.opts.Guess[atom.Symbol]; ok {
		custom = true
		nelec := atom.Z - ov.Charge - atom.ECPNElec
		naAtom = (nelec + ov.Multiplicity - 1) / 2
		nbAtom = nelec - naAtom
		for j, other := range g.mol.Atoms {
			if j == iatom {
				continue
			}
			charges = append(charges, integral.PointCharge{Q: sadLiftCharge, Pos: other.Coords})
		}
	}

	//the sub-basis is centered where the molecule put the atom, so the
	//nuclear charge sits at the atom's own coordinates
	scr, err := NewScreener(sub, g.eng)
	if err != nil {
		return nil, nil, err
	}
	fb, err := NewFockBuilder(sub, g.eng, scr, charges, pgroup.Local{})
	if err != nil {
		return nil, nil, err
	}
	fb.sameLOnly = true

	ortho, err := linalg.Orthogonalize(asSym(fb.Overlap()), g.opts.LindepTol)
	if err != nil {
		return nil, nil, err
	}

	occA, occB := splitOccupation(occ)

	//initial diagonal density from the subshell occupations
	dA = mat.NewDense(nao, nao, nil)
	dB = mat.NewDense(nao, nao, nil)
	remA, remB := occA, occB
	for ish := 0; ish < sub.Len(); ish++ {
		l := sub.Shell(ish).L
		if l > 3 {
			continue
		}
		if remA[l] < 0.1 {
			continue
		}
		norb := float64(2*l + 1)
		noccA := math.Min(remA[l]/norb, 1.0)
		noccB := math.Min(remB[l]/norb, 1.0)
		remA[l] -= noccA * norb
		remB[l] -= noccB * norb
		f := sub.First(ish)
		for ibf := f; ibf < f+sub.Shell(ish).Size(); ibf++ {
			dA.Set(ibf, ibf, noccA)
			dB.Set(ibf, ibf, noccB)
		}
	}
	averageChannels(dA, dB)

	h := fb.Hcore()
	s := fb.Overlap()
	dALast := mat.NewDense(nao, nao, nil)
	dBLast := mat.NewDense(nao, nao, nil)

	for iter := 1; ; iter++ {
		dALast.Copy(dA)
		dBLast.Copy(dB)

		ga, gb, err := fb.BuildG(dA, dB)
		if err != nil {
			return nil, nil, err
		}

		fA := mat.NewDense(nao, nao, nil)
		fA.Add(h, ga)
		if iter > 1 {
			applyDensityShift(fA, s, dALast, sadShift)
		}
		cA, _, err := linalg.DenseSolver{}.Solve(fA, ortho.X)
		if err != nil {
			return nil, nil, err
		}
		cB := cA
		if custom {
			fB := mat.NewDense(nao, nao, nil)
			fB.Add(h, gb)
			if iter > 1 {
				applyDensityShift(fB, s, dBLast, sadShift)
			}
			cB, _, err = linalg.DenseSolver{}.Solve(fB, ortho.X)
			if err != nil {
				return nil, nil, err
			}
		}

		if custom {
			dA = occupiedDensity(cA, naAtom)
			dB = occupiedDensity(cB, nbAtom)
		} else {
			dA = smearedDensity(sub, cA, occA)
			dB = smearedDensity(sub, cB, occB)
			averageChannels(dA, dB)
		}

		var diffA, diffB mat.Dense
		diffA.Sub(dA, dALast)
		diffB.Sub(dB, dBLast)
		var damped mat.Dense
		damped.Scale(sadDamp, &diffA)
		dA.Sub(dA, &damped)
		damped.Scale(sadDamp, &diffB)
		dB.Sub(dB, &damped)

		rmsd := math.Max(mat.Norm(&diffA, 2), mat.Norm(&diffB, 2))
		if rmsd <= sadConv || iter > sadMaxIter {
			break
		}
	}
	return dA, dB, nil
}

//applyDensityShift subtracts scale*S*D*S from f, nudging the atomic
//fixed-point iteration away from oscillation.
func applyDensityShift(f, s, d *mat.Dense, scale float64) {
	var sd, sds mat.Dense
	sd.Mul(s, d)
	sds.Mul(&sd, s)
	sds.Scale(scale, &sds)
	f.Sub(f, &sds)
}

//averageChannels replaces both densities with their mean, the restricted
//spin-averaged form.
func averageChannels(dA, dB *mat.Dense) {
	dA.Add(dA, dB)
	dA.Scale(0.5, dA)
	dB.Copy(dA)
}

//occupiedDensity forms D = C_occ * C_occ^T from the lowest nocc orbitals.
func occupiedDensity(c *mat.Dense, nocc int) *mat.Dense {
	n, cols := c.Dims()
	if nocc > cols {
		nocc = cols
	}
	d := mat.NewDense(n, n, nil)
	if nocc > 0 {
		occ := c.Slice(0, n, 0, nocc)
		d.Mul(occ, occ.T())
	}
	return d
}

//classifyMO assigns an orbital to the angular momentum whose basis
//functions, scanned in shell order, first accumulate a coefficient norm
//above 0.1. Orbitals dominated by l > 3 return -1 and are skipped.
func classifyMO(sub *basis.Set, c *mat.Dense, imo int) int {
	var normang [4]float64
	for ish := 0; ish < sub.Len(); ish++ {
		l := sub.Shell(ish).L
		if l > 3 {
			continue
		}
		f := sub.First(ish)
		for ibf := f; ibf < f+sub.Shell(ish).Size(); ibf++ {
			normang[l] += c.At(ibf, imo) * c.At(ibf, imo)
		}
		if normang[l] > 0.1 {
			return l
		}
	}
	return -1
}

//smearedDensity distributes the subshell occupations evenly over each set of
//degenerate orbitals (spherical averaging) and forms D = C diag(occ) C^T.
func smearedDensity(sub *basis.Set, c *mat.Dense, occ [4]float64) *mat.Dense {
	n, cols := c.Dims()
	occvec := make([]float64, cols)
	rem := occ
	for imo := 0; imo < cols; imo++ {
		if rem[0]+rem[1]+rem[2]+rem[3] < 0.1 {
			break
		}
		lang := classifyMO(sub, c, imo)
		if lang < 0 {
			continue
		}
		if rem[lang] < 0.1 {
			continue
		}
		norb := 2*lang + 1
		nocc := math.Min(rem[lang]/float64(norb), 1.0)
		for j := 0; j < norb && imo+j < cols; j++ {
			rem[lang] -= nocc
			occvec[imo+j] = nocc
		}
		imo += norb - 1
	}

	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < cols; k++ {
				sum += c.At(i, k) * occvec[k] * c.At(j, k)
			}
			d.Set(i, j, sum)
		}
	}
	return d
}

//asSym copies a numerically-symmetric dense matrix into a SymDense.
func asSym(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}
