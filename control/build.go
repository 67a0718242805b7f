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

package control

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/cncforge/motioncore/config"
	"github.com/cncforge/motioncore/gpio"
	"github.com/cncforge/motioncore/spindle"
	"github.com/cncforge/motioncore/stepper"
)

// hardware is everything a Settings instruction rebuilds: the three
// axes, the spindle executer, and the optional Z-probe switch.
type hardware struct {
	x, y, z *stepper.Axis
	spin    spindle.Executer
	zProbe  *gpio.Switch
}

func buildHardware(cfg *config.Config) (*hardware, error) {
	var h hardware
	var errs error

	x, err := buildAxis("x", cfg.DevMode, cfg.X)
	if err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "axis x"))
	}
	y, err := buildAxis("y", cfg.DevMode, cfg.Y)
	if err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "axis y"))
	}
	z, err := buildAxis("z", cfg.DevMode, cfg.Z)
	if err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "axis z"))
	}
	if errs != nil {
		return nil, errs
	}
	h.x, h.y, h.z = x, y, z

	if cfg.OnOffGPIO != nil && !cfg.DevMode {
		s, err := spindle.NewOnOff(*cfg.OnOffGPIO, cfg.OnOffInvert, cfg.OnOffSwitchDelay)
		if err != nil {
			closeHardware(&h)
			return nil, errors.Wrap(err, "spindle")
		}
		h.spin = s
	} else {
		h.spin = spindle.NewManual()
	}

	if cfg.CalibrateZGPIO != nil && !cfg.DevMode {
		h.zProbe = gpio.NewSwitch(*cfg.CalibrateZGPIO, false)
	}

	return &h, nil
}

func buildAxis(name string, devMode bool, ac config.AxisConfig) (*stepper.Axis, error) {
	if devMode {
		return stepper.NewAxis(name, stepper.NewMock(nil, nil)), nil
	}
	d, err := stepper.NewGPIODriver(stepper.GPIOConfig{
		PullGPIO:     ac.PullGPIO,
		DirGPIO:      ac.DirGPIO,
		InvertDir:    ac.InvertDir,
		EnaGPIO:      ac.EnaGPIO,
		EndLeftGPIO:  ac.EndLeftGPIO,
		EndRightGPIO: ac.EndRightGPIO,
	})
	if err != nil {
		return nil, err
	}
	return stepper.NewAxis(name, d), nil
}

func closeHardware(h *hardware) {
	if h.x != nil {
		h.x.Close()
	}
	if h.y != nil {
		h.y.Close()
	}
	if h.z != nil {
		h.z.Close()
	}
	if h.spin != nil {
		h.spin.Close()
	}
	if h.zProbe != nil {
		h.zProbe.Close()
	}
}

// idleSleep is the yield the loop takes when there is no work: ~10us,
// per spec.
const idleSleep = 10 * time.Microsecond

// safeRetractSpeed is the slow constant speed (steps/ns) used for the
// auto-generated Stop retraction line.
const safeRetractSpeed = 0.00001

// calibrateSweepTick and calibrateContactTick are the time-gates between
// calibration micro-steps: 1ms for Min/Max/Middle, 3ms for ContactPin.
const (
	calibrateSweepTick  = time.Millisecond
	calibrateContactTick = 3 * time.Millisecond
)
