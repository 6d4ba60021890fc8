/*
 * OPCBridge - Main process.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"
	env "github.com/xyproto/env/v2"

	reader "github.com/rcornwell/OPCBridge/command/reader"
	manifest "github.com/rcornwell/OPCBridge/config/manifest"
	bridge "github.com/rcornwell/OPCBridge/opcua/bridge"
	image "github.com/rcornwell/OPCBridge/plc/image"
	scan "github.com/rcornwell/OPCBridge/plc/scan"
	logger "github.com/rcornwell/OPCBridge/util/logger"
)

var Logger *slog.Logger

// controller wires the console commands to the running pieces.
type controller struct {
	bridge *bridge.Bridge
	engine *scan.Engine
	port   int
}

func (c *controller) StartServer(port int) error {
	if port == 0 {
		port = c.port
	}
	return c.bridge.Start(port)
}

func (c *controller) StopServer() {
	c.bridge.Stop()
}

func (c *controller) State() string {
	return c.bridge.State().String()
}

func (c *controller) Status() string {
	seen, added := c.bridge.Stats()
	lines := []string{
		"server: " + c.bridge.State().String(),
		"manifest: seen=" + strconv.Itoa(seen) + " added=" + strconv.Itoa(added),
	}
	for _, info := range c.bridge.Bindings() {
		lines = append(lines, "  "+info.Name+" node="+info.Node+" type="+info.Type)
	}
	return strings.Join(lines, "\n")
}

func (c *controller) Variables() []string {
	infos := c.bridge.Bindings()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}

func (c *controller) ReadVariable(name string) (string, error) {
	return c.bridge.ReadVariable(name)
}

func (c *controller) WriteVariable(name, value string) error {
	return c.bridge.WriteVariable(name, value)
}

func main() {
	optPort := getopt.IntLong("port", 'p', env.Int("OPCBRIDGE_PORT", 4840), "Endpoint TCP port")
	optManifest := getopt.StringLong("manifest", 'm', env.Str("OPCBRIDGE_MANIFEST", ""), "Located variables manifest")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optTick := getopt.IntLong("ticktime", 't', env.Int("OPCBRIDGE_TICKTIME", 50), "Scan period in milliseconds")
	optDebug := getopt.BoolLong("debug", 'd', "Debug logging to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	handler, err := logger.NewHandler(*optLogFile, programLevel, *optDebug)
	if err != nil {
		fmt.Println("Unable to open log file: " + err.Error())
		os.Exit(1)
	}
	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("OPCBridge started")

	path := *optManifest
	if path == "" {
		found, err := manifest.Find()
		if err != nil {
			Logger.Error("No located variables manifest found")
			os.Exit(1)
		}
		path = found
	}

	// Load the manifest once up front to allocate the image cells a
	// program load would have created.
	img := &image.Image{}
	records, seen, err := manifest.Load(path)
	if err != nil {
		Logger.Error("Unable to read manifest " + path + ": " + err.Error())
		os.Exit(1)
	}
	allocated := 0
	for _, rec := range records {
		loc := rec.Location
		if err := img.Allocate(loc.Area, loc.Width, loc.Index, loc.Bit); err != nil {
			Logger.Warn("Cell not allocated", "location", loc.String(), "error", err.Error())
			continue
		}
		allocated++
	}
	Logger.Info("Program image loaded", "manifest", path, "seen", seen, "allocated", allocated)

	opc := bridge.New(img, bridge.Config{ManifestPath: path})
	engine := &scan.Engine{
		Image:     img,
		Ticktime:  time.Duration(*optTick) * time.Millisecond,
		Publisher: opc,
	}

	engine.Start()
	if err := opc.Start(*optPort); err != nil {
		Logger.Error("Server not started: " + err.Error())
	}

	ctl := &controller{bridge: opc, engine: engine, port: *optPort}

	// Let a signal end the console cleanly.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("interrupt")
		if opc.State() == bridge.Running {
			opc.Stop()
		}
		engine.Stop()
		os.Exit(0)
	}()

	reader.ConsoleReader(ctl)

	if opc.State() == bridge.Running {
		opc.Stop()
	}
	engine.Stop()
	Logger.Info("OPCBridge done")
}
