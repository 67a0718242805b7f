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

package config

import (
	"fmt"
	"time"

	"github.com/aamcrae/config"
)

// Load reads a Config from an aamcrae/config file, one section per
// logical unit: [x], [y], [z] for the axes, [spindle] and [global] for
// the rest. This is glue for cmd/machined; the core itself never reads
// a config file, only the Config struct.
//
// Sample file:
//  [global]
//  dev_mode=false
//  pos_update_every_x_sec=0.05
//  external_input_enabled=true
//  calibrate_z_gpio=24
//
//  [x]
//  pull_gpio=17
//  dir_gpio=27
//  invert_dir=false
//  end_left_gpio=5
//  end_right_gpio=6
//  step_size=0.01
//  max_step_speed=4000
//  acceleration=0.000001
//  deceleration=0.000001
//
//  [spindle]
//  on_off_gpio=22
//  on_off_invert=false
//  on_off_switch_delay=2.0
func Load(path string) (*Config, error) {
	conf, err := config.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	var c Config

	if s := conf.GetSection("global"); s != nil {
		if v, err := s.GetArg("dev_mode"); err == nil {
			c.DevMode = v == "true"
		}
		if v, err := s.GetArg("pos_update_every_x_sec"); err == nil {
			var secs float64
			fmt.Sscanf(v, "%f", &secs)
			c.PosUpdateEvery = time.Duration(secs * float64(time.Second))
		}
		if v, err := s.GetArg("external_input_enabled"); err == nil {
			c.ExternalInputEnabled = v == "true"
		}
		if v, err := s.GetArg("calibrate_z_gpio"); err == nil {
			var g int
			if _, serr := fmt.Sscanf(v, "%d", &g); serr == nil {
				c.CalibrateZGPIO = &g
			}
		}
	}

	x, err := loadAxis(conf, "x")
	if err != nil {
		return nil, fmt.Errorf("axis x: %v", err)
	}
	c.X = *x
	y, err := loadAxis(conf, "y")
	if err != nil {
		return nil, fmt.Errorf("axis y: %v", err)
	}
	c.Y = *y
	z, err := loadAxis(conf, "z")
	if err != nil {
		return nil, fmt.Errorf("axis z: %v", err)
	}
	c.Z = *z

	if s := conf.GetSection("spindle"); s != nil {
		if v, err := s.GetArg("on_off_gpio"); err == nil {
			var g int
			if _, serr := fmt.Sscanf(v, "%d", &g); serr == nil {
				c.OnOffGPIO = &g
			}
		}
		if v, err := s.GetArg("on_off_invert"); err == nil {
			c.OnOffInvert = v == "true"
		}
		if v, err := s.GetArg("on_off_switch_delay"); err == nil {
			var secs float64
			fmt.Sscanf(v, "%f", &secs)
			c.OnOffSwitchDelay = time.Duration(secs * float64(time.Second))
		}
	}

	return &c, nil
}

func loadAxis(conf *config.Config, name string) (*AxisConfig, error) {
	s := conf.GetSection(name)
	if s == nil {
		return nil, fmt.Errorf("no config for %s", name)
	}
	var a AxisConfig
	n, err := s.Parse("pull_gpio", "%d", &a.PullGPIO)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("pull_gpio: %v", err)
	}
	n, err = s.Parse("dir_gpio", "%d", &a.DirGPIO)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("dir_gpio: %v", err)
	}
	if v, err := s.GetArg("invert_dir"); err == nil {
		a.InvertDir = v == "true"
	}
	if v, err := s.GetArg("ena_gpio"); err == nil {
		var g int
		if _, serr := fmt.Sscanf(v, "%d", &g); serr == nil {
			a.EnaGPIO = &g
		}
	}
	if v, err := s.GetArg("end_left_gpio"); err == nil {
		var g int
		if _, serr := fmt.Sscanf(v, "%d", &g); serr == nil {
			a.EndLeftGPIO = &g
		}
	}
	if v, err := s.GetArg("end_right_gpio"); err == nil {
		var g int
		if _, serr := fmt.Sscanf(v, "%d", &g); serr == nil {
			a.EndRightGPIO = &g
		}
	}
	n, err = s.Parse("step_size", "%f", &a.StepSize)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("step_size: %v", err)
	}
	n, err = s.Parse("max_step_speed", "%f", &a.MaxStepSpeed)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("max_step_speed: %v", err)
	}
	n, err = s.Parse("acceleration", "%f", &a.Acceleration)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("acceleration: %v", err)
	}
	n, err = s.Parse("deceleration", "%f", &a.Deceleration)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("deceleration: %v", err)
	}
	if v, err := s.GetArg("free_step_speed"); err == nil {
		fmt.Sscanf(v, "%f", &a.FreeStepSpeed)
	}
	if v, err := s.GetArg("acceleration_time_scale"); err == nil {
		fmt.Sscanf(v, "%f", &a.AccelerationTimeScale)
	}
	return &a, nil
}
