/*
 * gauss.go, part of goscf.
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

package integral

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"

	"github.com/goscf/goscf/basis"
)

//GaussEngine is a reference engine for contracted s-type Gaussians. It
//exists so the SCF machinery can be run and tested end to end without an
//external integral library; higher angular momenta return
//ErrUnsupportedShell.
type GaussEngine struct{}

//MaxL returns 0: the reference engine only handles s shells.
func (GaussEngine) MaxL() int { return 0 }

func (GaussEngine) check(shells ...*basis.Shell) error {
	for _, s := range shells {
		if s.L > 0 {
			return ErrUnsupportedShell{L: s.L, MaxL: 0}
		}
	}
	return nil
}

//normS is the normalization constant of an s-type primitive.
func normS(alpha float64) float64 {
	return math.Pow(2*alpha/math.Pi, 0.75)
}

func dist2(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

//gaussianProductCenter returns P = (α1·A + α2·B)/(α1+α2).
func gaussianProductCenter(a1, a2 float64, v1, v2 [3]float64) [3]float64 {
	p := a1 + a2
	var res [3]float64
	for i := range res {
		res[i] = (a1*v1[i] + a2*v2[i]) / p
	}
	return res
}

//boys evaluates the Boys function F_n(x) through the regularized incomplete
//gamma function.
func boys(x float64, n int) float64 {
	nf := float64(n)
	if x == 0 {
		return 1.0 / (2.0*nf + 1)
	}
	return mathext.GammaIncReg(nf+0.5, x) * math.Gamma(nf+0.5) / (2.0 * math.Pow(x, nf+0.5))
}

//Overlap returns the overlap block <a|b>.
func (g GaussEngine) Overlap(a, b *basis.Shell) (*mat.Dense, error) {
	if err := g.check(a, b); err != nil {
		return nil, err
	}
	var sum float64
	for k := range a.Exps {
		for l := range b.Exps {
			n := normS(a.Exps[k]) * normS(b.Exps[l])
			p := a.Exps[k] + b.Exps[l]
			q := a.Exps[k] * b.Exps[l] / p
			q2 := dist2(a.Origin, b.Origin)
			sum += n * a.Coefs[k] * b.Coefs[l] * math.Exp(-q*q2) * math.Pow(math.Pi/p, 1.5)
		}
	}
	return mat.NewDense(1, 1, []float64{sum}), nil
}

//Kinetic returns the kinetic-energy block <a|-1/2 ∇²|b>.
func (g GaussEngine) Kinetic(a, b *basis.Shell) (*mat.Dense, error) {
	if err := g.check(a, b); err != nil {
		return nil, err
	}
	var sum float64
	for k := range a.Exps {
		for l := range b.Exps {
			n := normS(a.Exps[k]) * normS(b.Exps[l])
			p := a.Exps[k] + b.Exps[l]
			q := a.Exps[k] * b.Exps[l] / p
			q2 := dist2(a.Origin, b.Origin)

			pc := gaussianProductCenter(a.Exps[k], b.Exps[l], a.Origin, b.Origin)
			pg2 := dist2(pc, b.Origin)

			s := n * a.Coefs[k] * b.Coefs[l] * math.Exp(-q*q2) * math.Pow(math.Pi/p, 1.5)
			bb := b.Exps[l]
			sum += 3 * bb * s
			sum -= 2 * bb * bb * s * (pg2 + 1.5/p)
		}
	}
	return mat.NewDense(1, 1, []float64{sum}), nil
}

//Nuclear returns the attraction block of a and b to the given point charges.
//The sign convention folds the charge in: electrons attracted to positive
//charges yield negative matrix elements.
func (g GaussEngine) Nuclear(a, b *basis.Shell, charges []PointCharge) (*mat.Dense, error) {
	if err := g.check(a, b); err != nil {
		return nil, err
	}
	var sum float64
	for _, c := range charges {
		for k := range a.Exps {
			for l := range b.Exps {
				n := normS(a.Exps[k]) * normS(b.Exps[l])
				p := a.Exps[k] + b.Exps[l]
				q := a.Exps[k] * b.Exps[l] / p
				q2 := dist2(a.Origin, b.Origin)

				pc := gaussianProductCenter(a.Exps[k], b.Exps[l], a.Origin, b.Origin)
				pg2 := dist2(pc, c.Pos)

				sum += -c.Q * n * a.Coefs[k] * b.Coefs[l] * math.Exp(-q*q2) *
					(2.0 * math.Pi / p) * boys(p*pg2, 0)
			}
		}
	}
	return mat.NewDense(1, 1, []float64{sum}), nil
}

//Repulsion returns the four-index Coulomb block (ab|cd).
func (g GaussEngine) Repulsion(a, b, c, d *basis.Shell) ([]float64, error) {
	if err := g.check(a, b, c, d); err != nil {
		return nil, err
	}
	var sum float64
	for ii := range a.Exps {
		for jj := range b.Exps {
			for kk := range c.Exps {
				for ll := range d.Exps {
					n := normS(a.Exps[ii]) * normS(b.Exps[jj]) * normS(c.Exps[kk]) * normS(d.Exps[ll])
					cc := a.Coefs[ii] * b.Coefs[jj] * c.Coefs[kk] * d.Coefs[ll]

					pij := a.Exps[ii] + b.Exps[jj]
					pkl := c.Exps[kk] + d.Exps[ll]
					pcij := gaussianProductCenter(a.Exps[ii], b.Exps[jj], a.Origin, b.Origin)
					pckl := gaussianProductCenter(c.Exps[kk], d.Exps[ll], c.Origin, d.Origin)
					sep2 := dist2(pcij, pckl)
					denom := 1.0/pij + 1.0/pkl

					qij := a.Exps[ii] * b.Exps[jj] / pij
					qkl := c.Exps[kk] * d.Exps[ll] / pkl
					q2ij := dist2(a.Origin, b.Origin)
					q2kl := dist2(c.Origin, d.Origin)

					term := 2.0 * math.Pi * math.Pi / (pij * pkl)
					term *= math.Sqrt(math.Pi / (pij + pkl))
					term *= math.Exp(-qij * q2ij)
					term *= math.Exp(-qkl * q2kl)

					sum += n * cc * term * boys(sep2/denom, 0)
				}
			}
		}
	}
	return []float64{sum}, nil
}
