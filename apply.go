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

package novel

import (
	"fmt"
	"sort"
	"time"
)

// maxJumpChain bounds how many jumps one Advance may follow before giving
// up, so that a script jumping to itself cannot hang the engine.
const maxJumpChain = 64

// Advance plays the next block. While a choice is pending it does nothing.
// If a line is still being revealed, it finishes the line instead.
func (e *Engine) Advance() error {
	e.init()
	if e.doc == nil {
		return fmt.Errorf("%w: no script loaded", ErrUI)
	}
	if e.doc.choiceLock {
		return nil
	}

	// Anything still waiting in a pipeline is shown now, unless the next
	// block wipes the figures anyway.
	if e.doc.IsClearMark(e.doc.cursor) {
		e.clearPipelines()
	} else {
		e.figurePipe.Skip()
		e.movePipe.Skip()
		e.loopPipe.Skip()
		e.drainPipelines()
	}

	if e.text.Running() {
		e.text.End()
		e.flushText()
		return nil
	}

	e.jumps = 0
	return e.playNext()
}

// playNext pulls the block at the cursor, renders any pending overlays
// followed by the block, and schedules auto-play.
func (e *Engine) playNext() error {
	block, ok := e.doc.next()
	if !ok {
		return ErrScriptEnd
	}
	settings := e.Display.Settings()

	if p, ok := e.doc.takePending(); ok {
		e.applyPending(p)
	}

	var wait time.Duration
	for _, cmd := range block {
		if e.TraceLog {
			e.logger().Debug("apply", "script", e.doc.Name, "block", e.doc.cursor-1, "command", FormatCommand(cmd))
		}
		if j, ok := cmd.(Jump); ok {
			return e.followJump(j.Target)
		}
		d, err := e.apply(cmd, settings)
		if err != nil {
			return err
		}
		wait += d
	}

	if e.doc.choiceLock {
		return nil
	}
	if !settings.WaitForVoice {
		wait = 0
	}
	e.scheduleAuto(settings.AutoDelay + wait)
	return nil
}

// followJump jumps and carries on playing at the destination. Commands
// after a jump in the same block are not applied.
func (e *Engine) followJump(t Target) error {
	e.jumps++
	if e.jumps > maxJumpChain {
		return fmt.Errorf("%w: more than %d jumps without a line, last to %v", ErrParse, maxJumpChain, t)
	}
	if err := e.jump(t); err != nil {
		return err
	}
	return e.playNext()
}

// apply applies one command and returns how long it contributes to the
// auto-play wait.
func (e *Engine) apply(cmd Command, settings Settings) (time.Duration, error) {
	cfg := e.config()
	switch c := cmd.(type) {
	case SetBackground:
		e.showBackground(cfg.BackgroundPath(c.Name))

	case PlayBgm:
		if c.Name != e.doc.currentBgm {
			e.playBgm(c.Name, settings)
		}

	case PlayVoice:
		path := cfg.VoicePath(c.Character, c.Clip)
		if err := e.voice().PlayOnce(path, mixVolume(settings.MainVolume, settings.VoiceVolume)); err != nil {
			e.logger().Warn("playing voice", "path", path, "err", err)
		}
		return e.voiceLength(c, path), nil

	case Dialogue:
		e.doc.setExplain(PlainText(c.Text))
		e.doc.pushBacklog(c.Speaker, c.Text)
		e.Display.SetSpeaker(c.Speaker)
		e.text.Start(c.Text, settings.TextSpeed)
		e.flushText()
		e.Display.SetBacklog(e.doc.BacklogView())

	case Figure:
		if c.Delay > 0 {
			d := c.Delay
			c.Delay = 0
			e.figurePipe.Enqueue(c, d)
			return 0, nil
		}
		e.showFigure(c)

	case Move:
		if c.Delay > 0 {
			d := c.Delay
			c.Delay = 0
			e.figurePipe.Enqueue(c, d)
			return 0, nil
		}
		e.startGesture(c)

	case Clear:
		e.clearFigures(c)

	case Choice:
		e.doc.choiceLock = true
		e.doc.setExplain(ChoiceSpeaker + ": " + c.Prompt)
		if c.Prompt != "" {
			e.doc.pushBacklog(ChoiceSpeaker, c.Prompt)
			e.Display.SetBacklog(e.doc.BacklogView())
		}
		opts := make([]string, len(c.Options))
		for i, o := range c.Options {
			opts[i] = o.Text
		}
		e.Display.SetChoices(c.Prompt, opts)

	case Jump:
		return 0, e.jump(c.Target)

	case Label, Empty:
		// nothing to do

	case gestureStep:
		e.applyStep(c)

	default:
		return 0, fmt.Errorf("%w: unknown command %T", ErrParse, cmd)
	}
	return 0, nil
}

// applyPending renders the overlays computed by a jump.
func (e *Engine) applyPending(p Pending) {
	cfg := e.config()
	if p.HasBackground {
		e.showBackground(cfg.BackgroundPath(p.Background))
	}
	switch p.Bgm {
	case BgmPlay:
		e.playBgm(p.BgmName, e.Display.Settings())
	case BgmStop:
		e.bgm().Stop()
		e.doc.currentBgm = ""
	}
	if p.HasFigures {
		keys := make([]SlotKey, 0, len(p.Figures))
		for k := range p.Figures {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			st := p.Figures[k]
			e.showFigure(Figure{
				Character: st.Character,
				Distance:  st.Distance,
				Body:      st.Body,
				Face:      st.Face,
				Slot:      st.Slot,
			})
		}
	}
}

func (e *Engine) showBackground(path string) {
	if err := e.Display.SetBackground(path); err != nil {
		e.logger().Warn("showing background", "path", path, "err", err)
	}
	e.background = path
}

func (e *Engine) playBgm(name string, settings Settings) {
	e.doc.currentBgm = name
	path := e.config().BgmPath(name)
	if err := e.bgm().PlayLoop(path, mixVolume(settings.MainVolume, settings.BgmVolume)); err != nil {
		e.logger().Warn("playing bgm", "path", path, "err", err)
	}
}

func (e *Engine) voiceLength(v PlayVoice, path string) time.Duration {
	if d, ok := e.Voices.Length(v.Character, v.Clip); ok {
		return d
	}
	if lr, ok := e.voice().(LengthReporter); ok {
		d, err := lr.Length(path)
		if err == nil {
			return d
		}
		e.logger().Warn("measuring voice", "path", path, "err", err)
	}
	return 0
}

// showFigure draws a figure. An empty body or face is taken from what the
// slot shows now, failing that from the nearest earlier figure declared in
// the slot.
func (e *Engine) showFigure(f Figure) {
	st := f.State()
	key := st.Key()
	if cur, ok := e.slots[key]; ok && cur.Character == st.Character {
		if st.Body == "" {
			st.Body = cur.Body
		}
		if st.Face == "" {
			st.Face = cur.Face
		}
	}
	if st.Body == "" || st.Face == "" {
		st.Body, st.Face = e.doc.latestFigure(key, e.doc.cursor-1, st.Body, st.Face)
	}
	if st.Body == "" {
		e.logger().Warn("figure has no body", "character", st.Character, "slot", key.String())
		return
	}
	img := e.Figures.Image(e.config(), st)
	if err := e.Display.SetFigure(key, img); err != nil {
		e.logger().Warn("showing figure", "character", st.Character, "slot", key.String(), "err", err)
	}
	e.slots[key] = st
}

func (e *Engine) clearFigures(c Clear) {
	if c.All() {
		e.Display.ClearAllFigures()
		for k := range e.slots {
			delete(e.slots, k)
		}
		return
	}
	key := SlotKey{Distance: c.Distance, Slot: c.Slot}
	e.Display.ClearFigure(key)
	delete(e.slots, key)
}

func (e *Engine) startGesture(m Move) {
	e.applyStep(gestureStep{g: newGesture(m), kind: stepPose})
}

// applyStep applies one step of a gesture and queues the step after it.
func (e *Engine) applyStep(s gestureStep) {
	m := s.g.move
	key := m.Key()
	switch s.kind {
	case stepPose, stepRest:
		if s.kind == stepPose && m.Action == ActionBackAndClean {
			e.Display.ClearFigure(key)
			delete(e.slots, key)
		}
		dx, dy := s.g.offset(s.kind)
		e.Display.SetFigureOffset(key, dx, dy)

	case stepArrive:
		dest, _ := s.g.destination()
		f := Figure{
			Character: m.Character,
			Distance:  m.Distance,
			Body:      m.Body,
			Face:      m.Face,
			Slot:      dest,
		}
		if cur, ok := e.slots[key]; ok {
			if f.Body == "" {
				f.Body = cur.Body
			}
			if f.Face == "" {
				f.Face = cur.Face
			}
		}
		e.showFigure(f)
		e.Display.SetFigureOffset(key, 0, 0)
		if dest != m.Slot {
			e.Display.ClearFigure(key)
			delete(e.slots, key)
		}
	}

	if k, d, ok := s.g.next(s.kind); ok {
		pipe := e.movePipe
		if s.g.looping() {
			pipe = e.loopPipe
		}
		pipe.Enqueue(gestureStep{g: s.g, kind: k}, d)
	}
}

// applyDelayed applies a command released by a delay pipeline.
func (e *Engine) applyDelayed(cmd Command) {
	switch c := cmd.(type) {
	case Figure:
		e.showFigure(c)
	case Move:
		e.startGesture(c)
	case gestureStep:
		e.applyStep(c)
	default:
		e.logger().Warn("unexpected delayed command", "command", FormatCommand(cmd))
	}
}

func (e *Engine) drainPipelines() {
	for _, p := range []*DelayPipeline{e.figurePipe, e.movePipe, e.loopPipe} {
		for _, cmd := range p.Drain() {
			if e.doc == nil {
				continue
			}
			e.applyDelayed(cmd)
		}
	}
}

func (e *Engine) clearPipelines() {
	e.figurePipe.Clear()
	e.movePipe.Clear()
	e.loopPipe.Clear()
}

// flushText shows the most recent text the animator has published.
func (e *Engine) flushText() {
	u := e.text.Updates()
	if len(u) == 0 {
		return
	}
	e.Display.SetDialogue(Segments(u[len(u)-1]))
}

func (e *Engine) scheduleAuto(d time.Duration) {
	if !e.auto.Enabled() {
		return
	}
	if err := e.auto.Schedule(d); err != nil {
		e.logger().Warn("auto-play disabled", "err", err)
		e.auto.Set(false)
	}
}

// mixVolume combines a main and channel volume, both 0-100, into 0-1.
func mixVolume(main, channel float64) float64 {
	return main * channel / 10000
}
