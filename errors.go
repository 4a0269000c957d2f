/*
 * errors.go, part of goscf.
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

//Error is the interface for errors in this package. The Decorate method
//allows callers to add information as the error travels up, and returns the
//accumulated decoration trail. Passing an empty string only queries the
//current trail.
type Error interface {
	error
	Decorate(string) []string
}

//CError is the concrete Error used across the package.
type CError struct {
	msg  string
	deco []string
}

func (err *CError) Error() string { return err.msg }

//Decorate adds deco to the error's trail and returns the trail. An empty
//string queries without adding.
func (err *CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//newError builds a CError with an initial decoration.
func newError(msg, caller string) *CError {
	return &CError{msg: msg, deco: []string{caller}}
}

//errDecorate adds the caller to err's trail when err implements Error;
//otherwise it wraps err in a CError first.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(Error)
	if !ok {
		return newError(err.Error(), caller)
	}
	e.Decorate(caller)
	return e
}
