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

// Package stepper drives individual stepper-motor axes: a Driver
// abstraction over a direction/pulse GPIO pair with limit-switch
// interlocks, and an Axis that wraps a driver with a signed step counter.
package stepper

import (
	"github.com/pkg/errors"

	"github.com/cncforge/motioncore/gpio"
	"github.com/cncforge/motioncore/instr"
)

// ErrBlocked is returned by Driver.DoStep when the end-of-travel switch
// for the requested direction is closed.
var ErrBlocked = errors.New("stepper: blocked")

// Driver is the polymorphic per-axis step driver: command a single step
// in a direction, report end-of-travel blocking.
type Driver interface {
	DoStep(dir instr.Direction) (instr.Direction, error)
	IsBlocked() (instr.Direction, bool)
	Close()
}

// GPIODriver is a Driver backed by real GPIO: a direction line, a pulse
// line, and up to two limit switches.
type GPIODriver struct {
	dirOut   *gpio.Output
	pulse    *gpio.Output
	enable   *gpio.Output
	endLeft  *gpio.Switch
	endRight *gpio.Switch

	invertDir  bool
	lastDir    instr.Direction
	haveLast   bool
}

// GPIOConfig describes the pins a GPIODriver is built from. Ena, EndLeft
// and EndRight are optional (zero value means "not fitted").
type GPIOConfig struct {
	PullGPIO, DirGPIO     int
	InvertDir             bool
	EnaGPIO               *int
	EndLeftGPIO, EndRightGPIO *int
}

// NewGPIODriver acquires the GPIO lines described by cfg. Acquiring the
// direction or pulse (output) lines is fatal; missing limit switches
// downgrade to always-open per spec.
func NewGPIODriver(cfg GPIOConfig) (*GPIODriver, error) {
	pulse, err := gpio.NewOutput(cfg.PullGPIO, false, false)
	if err != nil {
		return nil, errors.Wrap(err, "stepper: pulse line")
	}
	dirOut, err := gpio.NewOutput(cfg.DirGPIO, cfg.InvertDir, false)
	if err != nil {
		pulse.Close()
		return nil, errors.Wrap(err, "stepper: direction line")
	}
	d := &GPIODriver{dirOut: dirOut, pulse: pulse, invertDir: cfg.InvertDir}
	if cfg.EnaGPIO != nil {
		ena, err := gpio.NewOutput(*cfg.EnaGPIO, false, true)
		if err != nil {
			dirOut.Close()
			pulse.Close()
			return nil, errors.Wrap(err, "stepper: enable line")
		}
		d.enable = ena
	}
	if cfg.EndLeftGPIO != nil {
		d.endLeft = gpio.NewSwitch(*cfg.EndLeftGPIO, false)
	}
	if cfg.EndRightGPIO != nil {
		d.endRight = gpio.NewSwitch(*cfg.EndRightGPIO, false)
	}
	return d, nil
}

// DoStep flips the direction line if needed, checks the relevant limit
// switch, and emits a rising edge on the pulse line.
func (d *GPIODriver) DoStep(dir instr.Direction) (instr.Direction, error) {
	if !d.haveLast || d.lastDir != dir {
		if dir == instr.Right {
			if err := d.dirOut.SetHigh(); err != nil {
				return dir, errors.Wrap(err, "stepper: set direction")
			}
		} else {
			if err := d.dirOut.SetLow(); err != nil {
				return dir, errors.Wrap(err, "stepper: set direction")
			}
		}
		d.lastDir = dir
		d.haveLast = true
	}
	if blocked := d.switchFor(dir); blocked != nil && blocked.IsClosed() {
		return dir, ErrBlocked
	}
	if _, err := d.pulse.Toggle(); err != nil {
		return dir, errors.Wrap(err, "stepper: pulse")
	}
	if _, err := d.pulse.Toggle(); err != nil {
		return dir, errors.Wrap(err, "stepper: pulse")
	}
	return dir, nil
}

func (d *GPIODriver) switchFor(dir instr.Direction) *gpio.Switch {
	if dir == instr.Left {
		return d.endLeft
	}
	return d.endRight
}

// IsBlocked observes both limit switches and reports the direction in
// which motion is currently disallowed, if any.
func (d *GPIODriver) IsBlocked() (instr.Direction, bool) {
	if d.endLeft != nil && d.endLeft.IsClosed() {
		return instr.Left, true
	}
	if d.endRight != nil && d.endRight.IsClosed() {
		return instr.Right, true
	}
	return 0, false
}

// Close releases all GPIO lines this driver owns.
func (d *GPIODriver) Close() {
	d.pulse.Close()
	d.dirOut.Close()
	if d.enable != nil {
		d.enable.Close()
	}
	if d.endLeft != nil {
		d.endLeft.Close()
	}
	if d.endRight != nil {
		d.endRight.Close()
	}
}

// Mock is a Driver that succeeds unconditionally and never blocks,
// selected when the configuration's dev_mode flag is set. NewMock's
// blockAtMin/blockAtMax optionally simulate limit switches at fixed step
// positions, for tests that exercise calibration without real hardware.
type Mock struct {
	pos            int64
	blockAtMin     *int64
	blockAtMax     *int64
}

// NewMock builds a Mock driver. blockAtMin/blockAtMax, if non-nil, make
// IsBlocked/DoStep report blocked once pos reaches that step count.
func NewMock(blockAtMin, blockAtMax *int64) *Mock {
	return &Mock{blockAtMin: blockAtMin, blockAtMax: blockAtMax}
}

func (m *Mock) DoStep(dir instr.Direction) (instr.Direction, error) {
	if dir == instr.Left && m.blockAtMin != nil && m.pos <= *m.blockAtMin {
		return dir, ErrBlocked
	}
	if dir == instr.Right && m.blockAtMax != nil && m.pos >= *m.blockAtMax {
		return dir, ErrBlocked
	}
	if dir == instr.Right {
		m.pos++
	} else {
		m.pos--
	}
	return dir, nil
}

func (m *Mock) IsBlocked() (instr.Direction, bool) {
	if m.blockAtMin != nil && m.pos <= *m.blockAtMin {
		return instr.Left, true
	}
	if m.blockAtMax != nil && m.pos >= *m.blockAtMax {
		return instr.Right, true
	}
	return 0, false
}

func (m *Mock) Close() {}
