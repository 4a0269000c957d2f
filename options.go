/*
 * options.go, part of goscf.
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
	"os"

	"github.com/BurntSushi/toml"
)

//GuessAtomOptions overrides the neutral ground-state configuration of one
//element during guess construction.
type GuessAtomOptions struct {
	Charge       int `toml:"charge"`
	Multiplicity int `toml:"multiplicity"`
}

//Options collects the user-settable parameters of a calculation.
type Options struct {
	Charge       int     `toml:"charge"`
	Multiplicity int     `toml:"multiplicity"`
	Unrestricted bool    `toml:"unrestricted"`
	MaxIter      int     `toml:"maxiter"`
	ConvE        float64 `toml:"conve"` //energy convergence, Hartree
	ConvD        float64 `toml:"convd"` //density RMS convergence
	TileSize     int     `toml:"tilesize"`
	LindepTol    float64 `toml:"tol_lindep"`
	Lshift       float64 `toml:"lshift"`
	Damp         float64 `toml:"damp"` //density damping toward the previous iterate
	DoDensFit    bool    `toml:"densfit"`
	PlotFile     string  `toml:"plotfile"` //energy-trace PNG, empty disables

	Guess map[string]GuessAtomOptions `toml:"guess"`

	//UserTileSize and UserLshift record whether the user set the
	//corresponding option explicitly, which changes the tiling heuristic
	//and the level-shift recovery latch.
	UserTileSize bool `toml:"-"`
	UserLshift   bool `toml:"-"`
}

//DefaultOptions returns the option set used when no input file overrides
//anything.
func DefaultOptions() *Options {
	return &Options{
		Multiplicity: 1,
		MaxIter:      50,
		ConvE:        1e-8,
		ConvD:        1e-6,
		TileSize:     30,
		LindepTol:    1e-5,
	}
}

//LoadOptions reads a TOML options file over the defaults. Options absent
//from the file keep their default values; setting tilesize or lshift
//explicitly is recorded so downstream heuristics know the user chose them.
func LoadOptions(path string) (*Options, error) {
	cont, err := os.ReadFile(path)
	if err != nil {
		return nil, errDecorate(err, "LoadOptions")
	}
	o := DefaultOptions()
	md, err := toml.Decode(string(cont), o)
	if err != nil {
		return nil, errDecorate(err, "LoadOptions")
	}
	o.UserTileSize = md.IsDefined("tilesize")
	o.UserLshift = md.IsDefined("lshift")
	if err := o.Validate(); err != nil {
		return nil, errDecorate(err, "LoadOptions")
	}
	return o, nil
}

//Validate checks option consistency.
func (o *Options) Validate() error {
	if o.MaxIter < 1 {
		return newError("goSCF: maxiter must be at least 1", "Options.Validate")
	}
	if o.ConvE <= 0 || o.ConvD <= 0 {
		return newError("goSCF: convergence tolerances must be positive", "Options.Validate")
	}
	if o.TileSize < 1 {
		return newError("goSCF: tilesize must be positive", "Options.Validate")
	}
	if o.LindepTol <= 0 {
		return newError("goSCF: tol_lindep must be positive", "Options.Validate")
	}
	if o.Lshift < 0 {
		return newError("goSCF: lshift cannot be negative", "Options.Validate")
	}
	if o.Damp < 0 || o.Damp >= 1 {
		return newError("goSCF: damp must be in [0,1)", "Options.Validate")
	}
	if o.Multiplicity < 1 {
		return newError(fmt.Sprintf("goSCF: impossible multiplicity %d", o.Multiplicity), "Options.Validate")
	}
	return nil
}

//Occupations returns the alpha and beta electron counts for the molecule
//under these options.
func (o *Options) Occupations(m *Molecule) (nalpha, nbeta int, err error) {
	nelec := m.NElectrons(o.Charge)
	nalpha = (nelec + o.Multiplicity - 1) / 2
	nbeta = nelec - nalpha
	if nbeta < 0 || nalpha-nbeta != o.Multiplicity-1 {
		return 0, 0, newError(
			fmt.Sprintf("goSCF: charge %d and multiplicity %d are inconsistent with %d electrons",
				o.Charge, o.Multiplicity, nelec), "Options.Occupations")
	}
	return nalpha, nbeta, nil
}
