// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stepper

import (
	"github.com/cncforge/motioncore/instr"
)

// Axis wraps a Driver with a name and a signed step counter.
type Axis struct {
	Name   string
	driver Driver
	pos    int64
}

// NewAxis builds an Axis around driver.
func NewAxis(name string, driver Driver) *Axis {
	return &Axis{Name: name, driver: driver}
}

// Step commands one pulse in dir. On success pos is adjusted by +1
// (Right) or -1 (Left); on ErrBlocked, pos is left untouched.
func (a *Axis) Step(dir instr.Direction) error {
	_, err := a.driver.DoStep(dir)
	if err != nil {
		return err
	}
	if dir == instr.Right {
		a.pos++
	} else {
		a.pos--
	}
	return nil
}

// Pos returns the current signed step count.
func (a *Axis) Pos() int64 { return a.pos }

// IsBlocked reports whether the underlying driver currently disallows
// motion, and in which direction.
func (a *Axis) IsBlocked() (instr.Direction, bool) { return a.driver.IsBlocked() }

// Close releases the underlying driver's resources.
func (a *Axis) Close() { a.driver.Close() }

// Save snapshots the step counter, for carrying position across a
// Settings-driven axis rebuild.
func (a *Axis) Save() int64 { return a.pos }

// Restore re-applies a previously Saved step counter.
func (a *Axis) Restore(pos int64) { a.pos = pos }
