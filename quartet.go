/*
 * quartet.go, part of goscf.
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

//Quartet is one permutationally-unique shell quadruplet surviving pair
//screening, with the degeneracy factor accounting for the equivalent index
//permutations it represents.
type Quartet struct {
	S1, S2, S3, S4 int
	Deg            float64
}

//QuartetSeq enumerates the unique quartets of a screened basis lazily:
//s1 >= s2, s3 >= s4, (s1,s2) >= (s3,s4) lexicographically, with both pairs
//drawn from the significant-pair lists. The sequence is finite and
//restartable; enumeration is separate from accumulation so either can be
//tested alone.
type QuartetSeq struct {
	scr        *Screener
	s1, s3     int
	i2, i4     int
}

//newQuartetSeq starts an enumeration over the quartets of scr.
func newQuartetSeq(scr *Screener) *QuartetSeq {
	return &QuartetSeq{scr: scr}
}

//Reset rewinds the sequence to its first quartet.
func (q *QuartetSeq) Reset() {
	q.s1, q.s3, q.i2, q.i4 = 0, 0, 0, 0
}

//Next returns the next quartet, or ok=false when the sequence is exhausted.
func (q *QuartetSeq) Next() (Quartet, bool) {
	n := q.scr.bs.Len()
	for q.s1 < n {
		pairs1 := q.scr.pairs[q.s1]
		if q.i2 >= len(pairs1) {
			q.s1++
			q.i2, q.s3, q.i4 = 0, 0, 0
			continue
		}
		if q.s3 > q.s1 {
			q.i2++
			q.s3, q.i4 = 0, 0
			continue
		}
		s2 := pairs1[q.i2]
		pairs3 := q.scr.pairs[q.s3]
		if q.i4 >= len(pairs3) {
			q.s3++
			q.i4 = 0
			continue
		}
		s4 := pairs3[q.i4]
		s4max := q.s3
		if q.s1 == q.s3 {
			s4max = s2
		}
		//pair lists are ascending, so the rest of this s3 is out of range too
		if s4 > s4max {
			q.s3++
			q.i4 = 0
			continue
		}
		q.i4++
		return Quartet{
			S1:  q.s1,
			S2:  s2,
			S3:  q.s3,
			S4:  s4,
			Deg: quartetDegeneracy(q.s1, s2, q.s3, s4),
		}, true
	}
	return Quartet{}, false
}

//quartetDegeneracy returns the number of distinct index permutations the
//unique quartet stands for: 1, 2, 4 or 8.
func quartetDegeneracy(s1, s2, s3, s4 int) float64 {
	deg := 1.0
	if s1 != s2 {
		deg *= 2
	}
	if s3 != s4 {
		deg *= 2
	}
	if s1 != s3 || s2 != s4 {
		deg *= 2
	}
	return deg
}
