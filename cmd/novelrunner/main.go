// Copyright 2024 Josh Deprez
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build example
// +build example

// The novelrunner binary plays a script in the terminal.
//
// Quick usage from a game directory containing ini.toml:
//
//	go run -tags example github.com/DrJosh9000/novel/cmd/novelrunner -script start
//
// Keys: Enter or space advances, digits answer choices, a toggles auto-play,
// s toggles skip, up and down scroll the backlog, w and l save and load slot
// 0, + and - change the volume, q quits. When stdin is not a terminal, the
// same keys are read one per line.
//
// The "example" build tag is used to prevent this being installed to ~/go/bin
// if you use the go get command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/DrJosh9000/novel"
	"github.com/DrJosh9000/novel/audio"
	"github.com/DrJosh9000/novel/internal/logging"
	"github.com/mattn/go-isatty"
)

func main() {
	configPath := flag.String("config", "ini.toml", "Engine config file")
	scriptName := flag.String("script", "start", "Name of the first script")
	logFile := flag.String("log", "novel.log", "Log file (rotated)")
	flag.Parse()

	tty := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	opts := logging.FromEnv()
	opts.File = *logFile
	if tty {
		// The screen owns the terminal.
		opts.Console = nil
	}
	closer := logging.Init(opts)
	defer closer.Close()
	logger := logging.WithComponent(slog.Default(), "runner")

	cfg, err := novel.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Couldn't load config: %v", err)
	}
	user, err := novel.LoadUserConfig(cfg.UserConfigPath())
	if err != nil {
		logger.Warn("using default user settings", "err", err)
		user = novel.DefaultUserConfig()
	}
	voices, err := novel.LoadVoiceTable(cfg)
	if err != nil {
		logger.Warn("loading voice lengths", "err", err)
	}
	figures, err := novel.LoadFigureTable(cfg)
	if err != nil {
		logger.Warn("loading figure tables", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var disp display
	if tty {
		sd, err := newScreenDisplay(user)
		if err != nil {
			log.Fatalf("Couldn't open the terminal: %v", err)
		}
		defer sd.Close()
		disp = sd
	} else {
		disp = newLineDisplay(os.Stdout, user)
	}

	e := &novel.Engine{
		Display: disp,
		BGM:     new(audio.Channel),
		Voice:   new(audio.Channel),
		Source:  novel.DirSource{Dir: cfg.Initialize.Script},
		Config:  cfg,
		Voices:  voices,
		Figures: figures,
		Saves:   novel.NewSaveStore(cfg.Initialize.Save),
		Logger:  logging.WithComponent(slog.Default(), "engine"),
	}
	if err := e.Load(*scriptName); err != nil {
		log.Fatalf("Couldn't load script: %v", err)
	}
	if err := e.Post(novel.ClickRequest{}); err != nil {
		log.Fatalf("Couldn't start: %v", err)
	}

	go func() {
		if err := disp.ReadInput(ctx, e.Post); err != nil {
			logger.Warn("reading input", "err", err)
		}
		cancel()
	}()

	err = e.Run(ctx)
	disp.Close()
	switch {
	case errors.Is(err, novel.ErrScriptEnd):
		fmt.Println("The End.")
	case err != nil:
		logger.Error("playback stopped", "err", err)
	}

	user.Update(disp.Settings())
	if err := user.Save(cfg.UserConfigPath()); err != nil {
		logger.Warn("saving user settings", "err", err)
	}
}
