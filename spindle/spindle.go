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

// Package spindle implements the polymorphic spindle executer: on/off
// control with a settling delay, either GPIO-driven or purely manual
// (operator-acknowledged).
package spindle

import (
	"time"

	"github.com/cncforge/motioncore/gpio"
)

// Executer is the capability set the controller loop drives the spindle
// through: on/off with speed and turn direction, resume after a Settings
// rebuild, and a query of the current on/off state.
type Executer interface {
	On(speed float64, cw bool) time.Duration
	Off() time.Duration
	Resume()
	IsOn() bool
	Close()
}

// OnOff drives a GPIO output line for the spindle relay/VFD enable, with
// a configurable settling delay that the controller loop waits out, while
// still cycling, before it starts the next instruction.
type OnOff struct {
	out          *gpio.Output
	switchDelay  time.Duration
	on           bool
}

// NewOnOff builds an OnOff executer around gpioNum, inverted if invert.
func NewOnOff(gpioNum int, invert bool, switchDelay time.Duration) (*OnOff, error) {
	out, err := gpio.NewOutput(gpioNum, invert, false)
	if err != nil {
		return nil, err
	}
	return &OnOff{out: out, switchDelay: switchDelay}, nil
}

func (s *OnOff) On(speed float64, cw bool) time.Duration {
	s.out.SetHigh()
	s.on = true
	return s.switchDelay
}

func (s *OnOff) Off() time.Duration {
	s.out.SetLow()
	s.on = false
	return s.switchDelay
}

// Resume re-asserts the last commanded level on the output line. The
// controller loop does not call it.
func (s *OnOff) Resume() {
	if s.on {
		s.out.SetHigh()
	} else {
		s.out.SetLow()
	}
}

func (s *OnOff) IsOn() bool { return s.on }

func (s *OnOff) Close() { s.out.Close() }

// Manual is an Executer with no GPIO backing: the operator is assumed to
// switch the spindle by hand, so On/Off only track logical state and
// never sleep.
type Manual struct {
	on bool
}

// NewManual builds a Manual executer.
func NewManual() *Manual { return &Manual{} }

func (m *Manual) On(speed float64, cw bool) time.Duration {
	m.on = true
	return 0
}

func (m *Manual) Off() time.Duration {
	m.on = false
	return 0
}

func (m *Manual) Resume() {}

func (m *Manual) IsOn() bool { return m.on }

func (m *Manual) Close() {}
