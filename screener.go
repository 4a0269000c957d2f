/*
 * screener.go, part of goscf.
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

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/basis"
	"github.com/goscf/goscf/integral"
)

//shellPairThreshold is the overlap Frobenius-norm cutoff below which an
//off-center shell pair is dropped from the significant list.
const shellPairThreshold = 1e-12

//Screener holds the static screening structures of one basis set: the
//non-negligible shell-pair lists and the Schwarz bound matrix. It must be
//rebuilt whenever the basis changes; each atomic sub-basis in the guess gets
//its own Screener.
type Screener struct {
	bs    *basis.Set
	pairs [][]int   //pairs[s1] lists the significant s2 <= s1, ascending
	K     *mat.Dense //Schwarz bounds per shell pair, symmetric
}

//NewScreener computes the shell-pair list and the Schwarz matrix for bs.
//Pairs on the same center are always significant; the rest qualify by the
//Frobenius norm of their overlap block. K(s1,s2) is the square root of the
//largest magnitude in the (s1 s2|s1 s2) repulsion block.
func NewScreener(bs *basis.Set, eng integral.Engine) (*Screener, error) {
	n := bs.Len()
	scr := &Screener{bs: bs, pairs: make([][]int, n), K: mat.NewDense(n, n, nil)}

	for s1 := 0; s1 < n; s1++ {
		sh1 := bs.Shell(s1)
		for s2 := 0; s2 <= s1; s2++ {
			sh2 := bs.Shell(s2)
			significant := sh1.SameCenter(sh2)
			if !significant {
				ov, err := eng.Overlap(sh1, sh2)
				if err != nil {
					return nil, errDecorate(err, "NewScreener")
				}
				significant = mat.Norm(ov, 2) >= shellPairThreshold
			}
			if significant {
				scr.pairs[s1] = append(scr.pairs[s1], s2)
			}
		}
		slices.Sort(scr.pairs[s1])
	}

	for s1 := 0; s1 < n; s1++ {
		for s2 := 0; s2 <= s1; s2++ {
			block, err := eng.Repulsion(bs.Shell(s1), bs.Shell(s2), bs.Shell(s1), bs.Shell(s2))
			if err != nil {
				return nil, errDecorate(err, "NewScreener")
			}
			norm := 0.0
			for _, v := range block {
				if a := math.Abs(v); a > norm {
					norm = a
				}
			}
			k := math.Sqrt(norm)
			scr.K.Set(s1, s2, k)
			scr.K.Set(s2, s1, k)
		}
	}
	return scr, nil
}

//Pairs returns the ascending list of significant partners s2 <= s1.
func (scr *Screener) Pairs(s1 int) []int {
	return scr.pairs[s1]
}

//Significant reports whether (s1,s2), s2 <= s1, survived screening.
func (scr *Screener) Significant(s1, s2 int) bool {
	_, ok := slices.BinarySearch(scr.pairs[s1], s2)
	return ok
}

//NPairs returns the total number of significant shell pairs.
func (scr *Screener) NPairs() int {
	n := 0
	for _, p := range scr.pairs {
		n += len(p)
	}
	return n
}

//shellBlockNorm returns the per-shell-pair infinity norm of a density
//matrix, the density factor of the quartet screening estimate.
func shellBlockNorm(bs *basis.Set, d *mat.Dense) *mat.Dense {
	n := bs.Len()
	norms := mat.NewDense(n, n, nil)
	for s1 := 0; s1 < n; s1++ {
		f1, n1 := bs.First(s1), bs.Shell(s1).Size()
		for s2 := 0; s2 < n; s2++ {
			f2, n2 := bs.First(s2), bs.Shell(s2).Size()
			var max float64
			for i := f1; i < f1+n1; i++ {
				for j := f2; j < f2+n2; j++ {
					if a := math.Abs(d.At(i, j)); a > max {
						max = a
					}
				}
			}
			norms.Set(s1, s2, max)
		}
	}
	return norms
}
