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

// Command machined wires the controller loop to a configuration file and
// an optional HTTP telemetry preview, mirroring clock.go's main().
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/cncforge/motioncore/bridge"
	"github.com/cncforge/motioncore/config"
	"github.com/cncforge/motioncore/facade"
	"github.com/cncforge/motioncore/viz"
)

var configFile = flag.String("config", "", "Configuration file")
var port = flag.Int("port", 8080, "Web server port number")

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

	bus := make(chan bridge.SystemEvent, 256)
	b := bridge.New(ctrl, bus)
	go b.Run()

	if *port != 0 {
		srv := viz.New(800, 800)
		go srv.Consume(ctrl.Subscribe())
		go func() {
			if err := srv.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
				log.Printf("viz: %v", err)
			}
		}()
	}

	select {}
}
