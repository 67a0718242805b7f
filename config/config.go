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

// Package config holds the configuration blob the controller loop is
// constructed from, and is replaced wholesale by. The core takes a
// pre-parsed Config; loading it from a file is the concern of
// cmd/machined, not of this package's core struct.
package config

import "time"

// AxisConfig is one axis's section of the configuration blob.
type AxisConfig struct {
	PullGPIO, DirGPIO int
	InvertDir         bool
	EnaGPIO           *int
	EndLeftGPIO       *int
	EndRightGPIO      *int

	StepSize            float64 // mm/step
	MaxStepSpeed        float64 // steps/s
	Acceleration        float64 // 1/ns
	Deceleration        float64 // 1/ns
	FreeStepSpeed       float64
	AccelerationTimeScale float64
}

// Config is the full, recognised configuration blob. It is frozen for
// the lifetime of the loop until replaced by a Settings instruction.
type Config struct {
	DevMode bool

	X, Y, Z AxisConfig

	CalibrateZGPIO *int

	OnOffGPIO        *int
	OnOffInvert      bool
	OnOffSwitchDelay time.Duration

	PosUpdateEvery       time.Duration
	ExternalInputEnabled bool
}
