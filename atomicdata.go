/*
 * atomicdata.go, part of goscf.
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

import "math"

//A map for assigning atomic numbers to element symbols.
var symbolZ = map[string]int{
	"H": 1, "He": 2,
	"Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8, "F": 9, "Ne": 10,
	"Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15, "S": 16, "Cl": 17, "Ar": 18,
	"K": 19, "Ca": 20, "Sc": 21, "Ti": 22, "V": 23, "Cr": 24, "Mn": 25, "Fe": 26,
	"Co": 27, "Ni": 28, "Cu": 29, "Zn": 30, "Ga": 31, "Ge": 32, "As": 33, "Se": 34,
	"Br": 35, "Kr": 36,
	"Rb": 37, "Sr": 38, "Y": 39, "Zr": 40, "Nb": 41, "Mo": 42, "Tc": 43, "Ru": 44,
	"Rh": 45, "Pd": 46, "Ag": 47, "Cd": 48, "In": 49, "Sn": 50, "Sb": 51, "Te": 52,
	"I": 53, "Xe": 54,
	"Cs": 55, "Ba": 56, "La": 57, "Ce": 58, "Pr": 59, "Nd": 60, "Pm": 61, "Sm": 62,
	"Eu": 63, "Gd": 64, "Tb": 65, "Dy": 66, "Ho": 67, "Er": 68, "Tm": 69, "Yb": 70,
	"Lu": 71, "Hf": 72, "Ta": 73, "W": 74, "Re": 75, "Os": 76, "Ir": 77, "Pt": 78,
	"Au": 79, "Hg": 80, "Tl": 81, "Pb": 82, "Bi": 83, "Po": 84, "At": 85, "Rn": 86,
	"Fr": 87, "Ra": 88, "Ac": 89, "Th": 90, "Pa": 91, "U": 92, "Np": 93, "Pu": 94,
	"Am": 95, "Cm": 96, "Bk": 97, "Cf": 98, "Es": 99, "Fm": 100, "Md": 101,
	"No": 102, "Lr": 103,
}

//allocSubshell places up to 2*size electrons of *ne into *occ and removes
//them from *ne. This smears electrons over the subshell, which corresponds
//to spherical averaging.
func allocSubshell(occ *float64, size int, ne *int) {
	alloc := *ne
	if alloc > 2*size {
		alloc = 2 * size
	}
	*ne -= alloc
	*occ += float64(alloc)
}

//occupationVector returns the number of electrons in the s, p, d and f
//subshells of a neutral atom with atomic number z, following the NIST
//ground-state configurations. The irregular fillings of specific elements
//(singly-occupied 4s in K, Cr, Cu, and the analogous 5s/6s/5d/6d/7p cases)
//are encoded literally; they cannot be derived from a simple filling rule.
func occupationVector(z int) [4]float64 {
	var occ [4]float64
	ne := z

	allocSubshell(&occ[0], 1, &ne) //1s
	if z > 2 {
		allocSubshell(&occ[0], 1, &ne) //2s
		allocSubshell(&occ[1], 3, &ne) //2p
	}
	if z > 10 {
		allocSubshell(&occ[0], 1, &ne) //3s
		allocSubshell(&occ[1], 3, &ne) //3p
	}
	if z > 18 { //K..Kr; 4s is singly occupied in K, Cr and Cu
		n4s := 2
		if z == 19 || z == 24 || z == 29 {
			n4s = 1
		}
		ne -= n4s
		allocSubshell(&occ[0], 1, &n4s) //4s
		allocSubshell(&occ[2], 5, &ne)  //3d
		allocSubshell(&occ[1], 3, &ne)  //4p
	}
	if z > 36 { //Rb..I; 5s is singly occupied in Rb, Nb, Mo, Ru, Rh and Ag, empty in Pd
		n5s := 2
		switch {
		case z == 37 || z == 41 || z == 42 || z == 44 || z == 45 || z == 47:
			n5s = 1
		case z == 46:
			n5s = 0
		}
		ne -= n5s
		allocSubshell(&occ[0], 1, &n5s) //5s
		allocSubshell(&occ[2], 5, &ne)  //4d
		allocSubshell(&occ[1], 3, &ne)  //5p
	}
	if z > 54 { //Cs..Rn; 6s single in Cs, Pt, Au; 5d single in La, Ce, Gd
		n6s := 2
		if z == 55 || z == 78 || z == 79 {
			n6s = 1
		}
		ne -= n6s
		allocSubshell(&occ[0], 1, &n6s) //6s
		n5d := 0
		if z == 57 || z == 58 || z == 64 {
			n5d = 1
		}
		ne -= n5d
		allocSubshell(&occ[2], 5, &n5d) //5d, lanthanides
		allocSubshell(&occ[3], 7, &ne)  //4f
		allocSubshell(&occ[2], 5, &ne)  //5d
		allocSubshell(&occ[1], 3, &ne)  //6p
	}
	if z > 86 { //Fr..Og; 6d single or double in the early actinides, 7p single in Lr
		allocSubshell(&occ[0], 1, &ne) //7s
		n6d := 0
		switch {
		case z == 89 || z == 91 || z == 92 || z == 93 || z == 96:
			n6d = 1
		case z == 90:
			n6d = 2
		}
		ne -= n6d
		allocSubshell(&occ[2], 5, &n6d) //6d, actinides
		allocSubshell(&occ[3], 7, &ne)  //5f
		n7p := 0
		if z == 103 {
			n7p = 1
		}
		ne -= n7p
		allocSubshell(&occ[1], 3, &n7p) //7p, lawrencium
		allocSubshell(&occ[2], 5, &ne)  //6d
		allocSubshell(&occ[1], 3, &ne)  //7p
	}
	return occ
}

//coreSubshells is the aufbau order of core subshells (angular momenta) used
//to remove ECP-replaced electrons from an occupation vector.
var coreSubshells = []int{
	0,       //1s
	0, 1,    //2s 2p
	0, 1,    //3s 3p
	0, 2, 1, //4s 3d 4p
	0, 2, 1, //5s 4d 5p
	0, 3, 2, 1, //6s 4f 5d 6p
}

//reduceForECP removes ncore electrons from occ, full core subshells first in
//aufbau order. Returns an error when ncore does not correspond to a whole
//number of core subshells.
func reduceForECP(occ *[4]float64, ncore int) error {
	if ncore == 0 {
		return nil
	}
	left := ncore
	for _, l := range coreSubshells {
		sub := 2 * (2*l + 1)
		occ[l] -= float64(sub)
		left -= sub
		if left < 1 {
			break
		}
	}
	if left != 0 {
		return newError("goSCF: ECP core electron count does not match any core type", "reduceForECP")
	}
	return nil
}

//splitOccupation distributes the electrons of one subshell between the alpha
//and beta channels: doubly-occupied orbitals contribute to both, the
//remainder goes to alpha first.
func splitOccupation(occ [4]float64) (alpha, beta [4]float64) {
	for l := 0; l < 4; l++ {
		norb := float64(2*l + 1)
		ndbl := float64(int(occ[l]) / (2 * (2*l + 1)))
		a := ndbl*norb + math.Min(occ[l]-2*ndbl*norb, norb)
		b := ndbl*norb + math.Max(occ[l]-a-ndbl*norb, 0)
		alpha[l] = a
		beta[l] = b
	}
	return alpha, beta
}
