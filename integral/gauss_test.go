/*
 * gauss_test.go, part of goscf.
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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goscf/goscf/basis"
)

//hydrogenShell returns the STO-3G 1s shell of hydrogen at pos.
func hydrogenShell(pos [3]float64, center int) *basis.Shell {
	return &basis.Shell{
		L:      0,
		Exps:   []float64{3.42525091, 0.62391373, 0.16885540},
		Coefs:  []float64{0.15432897, 0.53532814, 0.44463454},
		Origin: pos,
		Center: center,
		Pure:   true,
	}
}

//Reference values below are the classic H2/STO-3G numbers at R = 1.4 bohr
//(Szabo & Ostlund, table 3.5 and surroundings).
func TestH2STO3G(t *testing.T) {
	eng := GaussEngine{}
	h1 := hydrogenShell([3]float64{0, 0, 0}, 0)
	h2 := hydrogenShell([3]float64{1.4, 0, 0}, 1)

	s11, err := eng.Overlap(h1, h1)
	require.NoError(t, err)
	require.InDelta(t, 1.0, s11.At(0, 0), 1e-4)

	s12, err := eng.Overlap(h1, h2)
	require.NoError(t, err)
	require.InDelta(t, 0.6593, s12.At(0, 0), 1e-3)

	t11, err := eng.Kinetic(h1, h1)
	require.NoError(t, err)
	require.InDelta(t, 0.7600, t11.At(0, 0), 1e-3)

	t12, err := eng.Kinetic(h1, h2)
	require.NoError(t, err)
	require.InDelta(t, 0.2365, t12.At(0, 0), 1e-3)

	q := []PointCharge{{Q: 1, Pos: [3]float64{0, 0, 0}}}
	v11, err := eng.Nuclear(h1, h1, q)
	require.NoError(t, err)
	require.InDelta(t, -1.2266, v11.At(0, 0), 1e-3)

	v12, err := eng.Nuclear(h1, h2, q)
	require.NoError(t, err)
	require.InDelta(t, -0.5974, v12.At(0, 0), 1e-3)

	r1111, err := eng.Repulsion(h1, h1, h1, h1)
	require.NoError(t, err)
	require.InDelta(t, 0.7746, r1111[0], 1e-3)

	r1122, err := eng.Repulsion(h1, h1, h2, h2)
	require.NoError(t, err)
	require.InDelta(t, 0.5697, r1122[0], 1e-3)

	r1212, err := eng.Repulsion(h1, h2, h1, h2)
	require.NoError(t, err)
	require.InDelta(t, 0.2970, r1212[0], 1e-3)
}

func TestRepulsionPermutationSymmetry(t *testing.T) {
	eng := GaussEngine{}
	h1 := hydrogenShell([3]float64{0, 0, 0}, 0)
	h2 := hydrogenShell([3]float64{1.4, 0, 0}, 1)

	ab, err := eng.Repulsion(h1, h2, h2, h2)
	require.NoError(t, err)
	ba, err := eng.Repulsion(h2, h1, h2, h2)
	require.NoError(t, err)
	cd, err := eng.Repulsion(h2, h2, h1, h2)
	require.NoError(t, err)
	require.InDelta(t, ab[0], ba[0], 1e-12)
	require.InDelta(t, ab[0], cd[0], 1e-12)
}

func TestUnsupportedShell(t *testing.T) {
	eng := GaussEngine{}
	p := &basis.Shell{L: 1, Exps: []float64{1}, Coefs: []float64{1}, Pure: true}
	s := hydrogenShell([3]float64{0, 0, 0}, 0)

	_, err := eng.Overlap(p, s)
	require.Error(t, err)
	require.ErrorAs(t, err, &ErrUnsupportedShell{})
}
