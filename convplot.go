/*
 * convplot.go, part of goscf.
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
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//ConvergencePlot writes the total-energy trace of an SCF run to a PNG file.
//A plotting failure is never fatal to a calculation; callers log and move
//on.
func ConvergencePlot(energies []float64, filename string) error {
	if len(energies) == 0 {
		return newError("goSCF: no iterations to plot", "ConvergencePlot")
	}
	p := plot.New()
	p.Title.Text = "SCF convergence"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Total energy (Hartree)"

	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i + 1)
		pts[i].Y = e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errDecorate(err, "ConvergencePlot")
	}
	p.Add(plotter.NewGrid(), line)

	if err := p.Save(14*vg.Centimeter, 10*vg.Centimeter, filename); err != nil {
		return errDecorate(err, "ConvergencePlot")
	}
	return nil
}
