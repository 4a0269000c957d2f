/*
 * doc.go, part of goscf.
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

/*Package scf is the main package of the goSCF library. It provides the
self-consistent-field (Hartree-Fock) core of a quantum-chemistry code:
superposition-of-atomic-densities guessing, screened direct Fock builds,
basis conditioning, and the iteration driver, for restricted and
unrestricted references.


	**goSCF Capabilities**


    Superposition-of-atomic-densities (SAD) initial guess with NIST
	ground-state configurations, per-element charge/multiplicity overrides
	and effective-core-potential occupation reduction.

    Shell-pair screening with overlap significance lists and Schwarz bound
	matrices; quartet screening against density-block norms.

    Direct Fock builds over permutationally-unique shell quartets, with the
	work distributed over a process group.

    Generalized-eigenproblem conditioning (canonical orthogonalization with
	linear-dependency removal) and Roothaan-Hall solves, on a single rank or
	block-cyclically over a 2-D process grid.

    Level shifting with an automatic recovery latch for small HOMO-LUMO
	gaps, plus density damping.

    TOML option files, structured iteration logging and convergence-trace
	plots.

Integral evaluation is external: any engine implementing the interface in
the integral subpackage plugs in. A reference contracted-Gaussian engine for
s shells ships with the library so everything can run and be tested without
one.

goSCF builds its dense linear algebra on gonum.org/v1/gonum/mat.*/
package scf
