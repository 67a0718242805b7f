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

// Command jogtool is an interactive CLI for manually jogging axes and
// running calibration sweeps against a running machined instance's
// config, useful for bench testing without a full UI stack.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cncforge/motioncore/config"
	"github.com/cncforge/motioncore/facade"
	"github.com/cncforge/motioncore/geom"
	"github.com/cncforge/motioncore/instr"
)

var configFile = flag.String("config", "", "Configuration file")

func main() {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	ctrl, err := facade.New(cfg)
	if err != nil {
		log.Fatalf("controller: %v", err)
	}
	go ctrl.Run()

	feedback := ctrl.Subscribe()
	go func() {
		for f := range feedback {
			if f.Kind == instr.FeedbackPos {
				fmt.Printf("pos: (%d, %d, %d)\n", f.Pos.X, f.Pos.Y, f.Pos.Z)
			}
		}
	}()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("jog> ")
		text, _ := reader.ReadString('\n')
		text = strings.TrimSpace(text)
		switch {
		case text == "help":
			fmt.Println("  jog x|y|z <steps/s>  - manual jog an axis")
			fmt.Println("  stop                 - zero velocity, returns to Idle")
			fmt.Println("  calibrate x|y|z <type>  - Min|Max|Middle|ContactPin")
			fmt.Println("  q                    - quit")
		case text == "q":
			ctrl.Shutdown()
			return
		case text == "stop":
			ctrl.Submit(instr.NewManualMovement(geom.Location[float64]{}))
		case strings.HasPrefix(text, "jog "):
			var axis string
			var speed float64
			if n, err := fmt.Sscanf(text, "jog %s %f", &axis, &speed); err != nil || n != 2 {
				fmt.Println("usage: jog x|y|z <steps/s>")
				continue
			}
			v := axisVelocity(axis, speed/1e9)
			ctrl.Submit(instr.NewManualMovement(v))
		case strings.HasPrefix(text, "calibrate "):
			var axis, typ string
			if n, err := fmt.Sscanf(text, "calibrate %s %s", &axis, &typ); err != nil || n != 2 {
				fmt.Println("usage: calibrate x|y|z <Min|Max|Middle|ContactPin>")
				continue
			}
			ctrl.Submit(calibrateInstruction(axis, typ))
		default:
			fmt.Println("unrecognised command, try 'help'")
		}
	}
}

func axisVelocity(axis string, perNs float64) geom.Location[float64] {
	switch axis {
	case "x":
		return geom.Location[float64]{X: perNs}
	case "y":
		return geom.Location[float64]{Y: perNs}
	case "z":
		return geom.Location[float64]{Z: perNs}
	default:
		return geom.Location[float64]{}
	}
}

func calibrateInstruction(axis, typ string) instr.Instruction {
	var t instr.CalibrateType
	switch typ {
	case "Min":
		t = instr.CalibrateMin
	case "Max":
		t = instr.CalibrateMax
	case "Middle":
		t = instr.CalibrateMiddle
	case "ContactPin":
		t = instr.CalibrateContactPin
	default:
		t = instr.CalibrateNone
	}
	switch axis {
	case "x":
		return instr.NewCalibrate(t, instr.CalibrateNone, instr.CalibrateNone)
	case "y":
		return instr.NewCalibrate(instr.CalibrateNone, t, instr.CalibrateNone)
	case "z":
		return instr.NewCalibrate(instr.CalibrateNone, instr.CalibrateNone, t)
	default:
		return instr.NewCalibrate(instr.CalibrateNone, instr.CalibrateNone, instr.CalibrateNone)
	}
}
