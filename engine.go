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

// Package novel compiles visual-novel scripts and plays them against a
// display and audio channels.
package novel // import "github.com/DrJosh9000/novel"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often Run polls the background schedulers.
const DefaultPollInterval = 20 * time.Millisecond

// requestQueueLen is the capacity of the engine's request channel.
const requestQueueLen = 16

// Engine plays a Document. All of its methods except Post must be called
// from one goroutine, normally the one calling Run; other goroutines talk
// to the engine by posting requests.
type Engine struct {
	// Presentation and audio. Display is required; a nil audio channel is
	// silent.
	Display Display
	BGM     AudioChannel
	Voice   AudioChannel

	// Source provides scripts for Load and cross-script jumps.
	Source ScriptSource

	// Asset locations and tables. A nil Config uses asset names relative
	// to the working directory.
	Config  *Config
	Voices  VoiceTable
	Figures *FigureTable
	Saves   *SaveStore

	// Logger receives warnings about assets and schedulers. Nil means
	// slog.Default().
	Logger *slog.Logger

	// TraceLog logs every command applied, at debug level.
	TraceLog bool

	// PollInterval is the period of Run's polling loop. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration

	once     sync.Once
	started  bool
	requests chan Request

	doc        *Document
	text       TextAnimator
	auto       *AutoScheduler
	skip       *SkipScheduler
	figurePipe *DelayPipeline
	movePipe   *DelayPipeline
	loopPipe   *DelayPipeline

	slots      map[SlotKey]FigureState
	background string
	jumps      int
}

func (e *Engine) init() {
	e.once.Do(func() {
		e.requests = make(chan Request, requestQueueLen)
		e.auto = NewAutoScheduler()
		e.skip = NewSkipScheduler(DefaultSkipPeriod)
		e.figurePipe = NewDelayPipeline()
		e.movePipe = NewDelayPipeline()
		e.loopPipe = NewDelayPipeline()
		e.slots = make(map[SlotKey]FigureState)
	})
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Engine) config() *Config {
	if e.Config != nil {
		return e.Config
	}
	return &Config{}
}

func (e *Engine) bgm() AudioChannel {
	if e.BGM != nil {
		return e.BGM
	}
	return FakeAudio{}
}

func (e *Engine) voice() AudioChannel {
	if e.Voice != nil {
		return e.Voice
	}
	return FakeAudio{}
}

// Document returns the live document, or nil before Load.
func (e *Engine) Document() *Document { return e.doc }

// Load compiles the named script and makes it the live document, ready to
// play from its first block.
func (e *Engine) Load(name string) error {
	e.init()
	if e.Display == nil {
		return fmt.Errorf("%w: nil display", ErrUI)
	}
	if e.Source == nil {
		return fmt.Errorf("%w: nil script source", ErrFile)
	}
	doc, err := LoadDocument(e.Source, name)
	if err != nil {
		return err
	}
	doc.adoptBacklog(e.doc)
	e.doc = doc
	return nil
}

// Start starts the background schedulers and delay pipelines. They stop
// when ctx is done. Calling Start again does nothing.
func (e *Engine) Start(ctx context.Context) error {
	e.init()
	if e.doc == nil {
		return fmt.Errorf("%w: no script loaded", ErrUI)
	}
	if e.started {
		return nil
	}
	e.started = true
	go e.auto.Run(ctx)
	go e.skip.Run(ctx)
	go e.figurePipe.Run(ctx)
	go e.movePipe.Run(ctx)
	go e.loopPipe.Run(ctx)
	e.refreshSaveSlots()
	e.ApplyVolume()
	return nil
}

// Run plays until ctx is done, in which case it returns nil, or until
// playback runs off the end of the script, in which case it returns
// ErrScriptEnd. Other errors are logged and playback continues.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}
	interval := e.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case r := <-e.requests:
			err = e.handle(r)
		case <-t.C:
			err = e.Poll()
		}
		if errors.Is(err, ErrScriptEnd) {
			return err
		}
		if err != nil {
			e.logger().Warn("playback error", "err", err)
		}
	}
}

// Poll collects the work the background schedulers have done since the
// last call: revealed text, released delayed commands, and auto and skip
// pulses.
func (e *Engine) Poll() error {
	e.init()
	e.flushText()
	e.drainPipelines()
	if e.doc == nil {
		return nil
	}
	if e.auto.TakeReady() {
		if e.text.Running() {
			e.text.End()
			e.flushText()
			e.scheduleAuto(e.Display.Settings().AutoDelay)
		} else if err := e.Advance(); err != nil {
			return err
		}
	}
	if e.skip.TakePulse() {
		return e.Advance()
	}
	return nil
}

// Post queues a request for the engine's goroutine. It never blocks; if the
// queue is full the request is dropped and an ErrAuto error returned.
func (e *Engine) Post(r Request) error {
	e.init()
	select {
	case e.requests <- r:
		return nil
	default:
		return fmt.Errorf("%w: request queue full, dropped %T", ErrAuto, r)
	}
}

// Request is something another goroutine asks the engine to do.
type Request interface {
	requestTag()
}

// ClickRequest advances, or finishes the line being revealed.
type ClickRequest struct{}

// ChooseRequest answers a choice.
type ChooseRequest struct{ Text string }

// JumpRequest jumps to a target.
type JumpRequest struct{ Target Target }

// ToggleAutoRequest flips auto-play.
type ToggleAutoRequest struct{}

// ToggleSkipRequest flips skip mode.
type ToggleSkipRequest struct{}

// SaveRequest saves to a slot.
type SaveRequest struct{ Slot int }

// LoadRequest loads from a slot.
type LoadRequest struct{ Slot int }

// ScrollBacklogRequest scrolls the backlog.
type ScrollBacklogRequest struct{ Delta int }

// BacklogJumpRequest replays from a backlog entry.
type BacklogJumpRequest struct {
	Script string
	Index  int
}

// VolumeRequest applies the display's current volume settings.
type VolumeRequest struct{}

func (ClickRequest) requestTag()         {}
func (ChooseRequest) requestTag()        {}
func (JumpRequest) requestTag()          {}
func (ToggleAutoRequest) requestTag()    {}
func (ToggleSkipRequest) requestTag()    {}
func (SaveRequest) requestTag()          {}
func (LoadRequest) requestTag()          {}
func (ScrollBacklogRequest) requestTag() {}
func (BacklogJumpRequest) requestTag()   {}
func (VolumeRequest) requestTag()        {}

func (e *Engine) handle(r Request) error {
	switch r := r.(type) {
	case ClickRequest:
		return e.Advance()
	case ChooseRequest:
		return e.Choose(r.Text)
	case JumpRequest:
		return e.Jump(r.Target)
	case ToggleAutoRequest:
		e.ToggleAuto()
	case ToggleSkipRequest:
		e.ToggleSkip()
	case SaveRequest:
		return e.Save(r.Slot)
	case LoadRequest:
		return e.LoadSlot(r.Slot)
	case ScrollBacklogRequest:
		e.ScrollBacklog(r.Delta)
	case BacklogJumpRequest:
		return e.BacklogJump(r.Script, r.Index)
	case VolumeRequest:
		e.ApplyVolume()
	default:
		return fmt.Errorf("%w: unknown request %T", ErrUI, r)
	}
	return nil
}
