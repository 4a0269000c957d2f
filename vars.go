/*
 * vars.go, part of goscf.
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

//SCFVars is the mutable per-calculation iteration state threaded through the
//driver loop. It is constructed once per calculation, updated on rank 0 and
//broadcast, never recomputed independently on other ranks.
type SCFVars struct {
	Lshift      float64 //current level shift, Hartree
	LshiftReset bool    //recovery shift engaged; monotonic, never cleared
	HLGap       float64 //latest HOMO-LUMO gap estimate, after shift removal
	DoDensFit   bool
}

//newSCFVars seeds the iteration state from the options.
func newSCFVars(o *Options) *SCFVars {
	return &SCFVars{Lshift: o.Lshift, DoDensFit: o.DoDensFit}
}
