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
	"time"
)

// ChoiceSpeaker is the speaker recorded in the backlog for an answered
// choice.
const ChoiceSpeaker = "Choice"

// Auto-play waits that do not depend on the script.
const (
	autoStartDelay  = time.Second
	autoChoiceDelay = 5 * time.Second
)

// Jump moves playback to a label, compiling another script if the target
// names one. The destination's background, music, and figures are rendered
// by the next Advance together with the destination block.
func (e *Engine) Jump(t Target) error {
	e.init()
	if e.doc == nil {
		return fmt.Errorf("%w: no script loaded", ErrUI)
	}
	return e.jump(t)
}

func (e *Engine) jump(t Target) error {
	if t.Script == "" {
		t.Script = e.doc.Name
	}
	if t.Label == "" {
		t.Label = StartLabel
	}
	doc, err := e.documentFor(t.Script)
	if err != nil {
		return err
	}
	idx, ok := doc.LabelIndex(t.Label)
	if !ok {
		return UnknownLabelErr{Target: t}
	}
	e.land(doc, idx)
	return nil
}

// JumpToIndex moves playback to a block index, compiling another script if
// needed. The index is clamped to the document.
func (e *Engine) JumpToIndex(script string, index int) error {
	e.init()
	if e.doc == nil {
		return fmt.Errorf("%w: no script loaded", ErrUI)
	}
	doc, err := e.documentFor(script)
	if err != nil {
		return err
	}
	if index < 0 {
		index = 0
	}
	if index > doc.Len() {
		index = doc.Len()
	}
	e.land(doc, index)
	return nil
}

// documentFor returns the live document if it has the given name, and
// otherwise compiles a new one. The live document is untouched if
// compilation fails.
func (e *Engine) documentFor(name string) (*Document, error) {
	if name == e.doc.Name {
		return e.doc, nil
	}
	if e.Source == nil {
		return nil, fmt.Errorf("%w: nil script source", ErrFile)
	}
	doc, err := LoadDocument(e.Source, name)
	if err != nil {
		return nil, err
	}
	doc.adoptBacklog(e.doc)
	doc.currentBgm = e.doc.currentBgm
	return doc, nil
}

// land makes doc live with its cursor at idx. Figures and anything waiting
// in the pipelines are dropped; the destination's overlays become pending.
func (e *Engine) land(doc *Document, idx int) {
	e.clearPipelines()
	e.Display.ClearAllFigures()
	for k := range e.slots {
		delete(e.slots, k)
	}
	if e.doc.choiceLock {
		e.doc.choiceLock = false
		e.Display.SetChoices("", nil)
	}
	e.doc = doc
	doc.seek(idx)
}

// Choose answers the pending choice with the text of one of its options,
// and jumps to the option's target. Unknown text leaves the choice
// pending.
func (e *Engine) Choose(text string) error {
	e.init()
	if e.doc == nil || !e.doc.choiceLock {
		return fmt.Errorf("%w: no choice pending", ErrUI)
	}
	t, ok := e.doc.ChoiceTarget(text)
	if !ok {
		return UnknownChoiceErr{Text: text}
	}
	// Recorded where the choice was made, once the jump has succeeded.
	entry := e.doc.backlogEntry(ChoiceSpeaker, text)
	if err := e.jump(t); err != nil {
		return err
	}
	e.doc.backlog = append(e.doc.backlog, entry)
	e.Display.SetSpeaker("")
	e.Display.SetDialogue(Segments(text))
	e.Display.SetBacklog(e.doc.BacklogView())
	e.scheduleAuto(autoChoiceDelay)
	return nil
}

// Save records the current position in a save slot.
func (e *Engine) Save(slot int) error {
	e.init()
	if e.doc == nil {
		return fmt.Errorf("%w: no script loaded", ErrUI)
	}
	if e.Saves == nil {
		return fmt.Errorf("%w: no save store", ErrFile)
	}
	rec := SaveRecord{
		Script:     e.doc.Name,
		Index:      e.doc.cursor,
		Explain:    e.doc.explain,
		Background: e.background,
	}
	if err := e.Saves.Store(slot, rec); err != nil {
		return err
	}
	e.refreshSaveSlots()
	return nil
}

// LoadSlot resumes from a save slot, replaying the block that was showing
// when it was saved.
func (e *Engine) LoadSlot(slot int) error {
	e.init()
	if e.Saves == nil {
		return fmt.Errorf("%w: no save store", ErrFile)
	}
	rec, err := e.Saves.Load(slot)
	if err != nil {
		return err
	}
	if rec.Empty() {
		return fmt.Errorf("%w: save slot %d is empty", ErrUI, slot)
	}
	return e.resume(rec.Script, rec.Index)
}

// BacklogJump replays from a backlog entry's position.
func (e *Engine) BacklogJump(script string, index int) error {
	e.init()
	return e.resume(script, index)
}

// resume replays the block before index: positions recorded by saves and
// the backlog are taken after their block was pulled.
func (e *Engine) resume(script string, index int) error {
	if e.doc == nil {
		if err := e.Load(script); err != nil {
			return err
		}
	}
	if err := e.JumpToIndex(script, index-1); err != nil {
		return err
	}
	e.text.End()
	e.flushText()
	return e.Advance()
}

// ScrollBacklog moves the backlog window back (positive) or forward
// (negative) and shows it.
func (e *Engine) ScrollBacklog(delta int) {
	e.init()
	if e.doc == nil {
		return
	}
	e.doc.scrollBacklog(delta)
	e.Display.SetBacklog(e.doc.BacklogView())
}

// ToggleAuto flips auto-play and returns the new state. Turning it on
// advances after a second.
func (e *Engine) ToggleAuto() bool {
	e.init()
	on := e.auto.Toggle()
	if on {
		e.scheduleAuto(autoStartDelay)
	} else {
		e.auto.Reset()
	}
	return on
}

// ToggleSkip flips skip mode and returns the new state.
func (e *Engine) ToggleSkip() bool {
	e.init()
	return e.skip.Toggle()
}

// AutoEnabled reports whether auto-play is on.
func (e *Engine) AutoEnabled() bool {
	e.init()
	return e.auto.Enabled()
}

// SkipEnabled reports whether skip mode is on.
func (e *Engine) SkipEnabled() bool {
	e.init()
	return e.skip.Enabled()
}

// ApplyVolume sets both audio channels from the display's volume settings.
func (e *Engine) ApplyVolume() {
	s := e.Display.Settings()
	e.bgm().SetVolume(mixVolume(s.MainVolume, s.BgmVolume))
	e.voice().SetVolume(mixVolume(s.MainVolume, s.VoiceVolume))
}

func (e *Engine) refreshSaveSlots() {
	if e.Saves == nil {
		return
	}
	recs, err := e.Saves.List()
	if err != nil {
		e.logger().Warn("reading save slots", "err", err)
	}
	e.Display.SetSaveSlots(recs)
}
