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
	"strings"
	"time"
)

// StartLabel is the label used when a target does not name one. Every
// document has it, at block 0 unless the script declares it elsewhere.
const StartLabel = "start"

// Command is one directive within a compiled block. The set of commands is
// closed: SetBackground, PlayBgm, PlayVoice, Dialogue, Figure, Move, Clear,
// Choice, Jump, Label, and Empty.
type Command interface {
	commandTag()
}

// SetBackground replaces the background image.
type SetBackground struct {
	Name string
}

// PlayBgm starts looping a background music track.
type PlayBgm struct {
	Name string
}

// PlayVoice plays a single voice clip for a character. Its recorded clip
// length contributes to the auto-advance wait.
type PlayVoice struct {
	Character string
	Clip      string
}

// Dialogue shows a line of text attributed to a speaker.
type Dialogue struct {
	Speaker string
	Text    string
}

// Figure shows a character sprite in a slot. An empty Body or Face is
// filled in from the nearest earlier figure in the same slot. A non-zero
// Delay defers the figure through the figure pipeline.
type Figure struct {
	Character string
	Distance  string
	Body      string
	Face      string
	Slot      string
	Delay     time.Duration
}

// Key returns the slot the figure occupies.
func (f Figure) Key() SlotKey { return SlotKey{Distance: f.Distance, Slot: f.Slot} }

// State returns the figure without its delay.
func (f Figure) State() FigureState {
	return FigureState{
		Character: f.Character,
		Distance:  f.Distance,
		Body:      f.Body,
		Face:      f.Face,
		Slot:      f.Slot,
	}
}

// MoveAction names a gesture a figure can perform.
type MoveAction string

// Known move actions.
const (
	ActionNod          MoveAction = "nod"
	ActionTo0          MoveAction = "to0"
	ActionTo2          MoveAction = "to2"
	ActionBack         MoveAction = "back"
	ActionBackAndClean MoveAction = "back_and_clean"
)

func (a MoveAction) valid() bool {
	switch a {
	case ActionNod, ActionTo0, ActionTo2, ActionBack, ActionBackAndClean:
		return true
	}
	return false
}

// Move animates a figure. RepeatCount is the number of times the gesture is
// performed; zero or less repeats until the move pipelines are cleared.
type Move struct {
	Character   string
	Distance    string
	Body        string
	Face        string
	Slot        string
	Action      MoveAction
	RepeatCount int
	Delay       time.Duration
}

// Key returns the slot the moving figure occupies.
func (m Move) Key() SlotKey { return SlotKey{Distance: m.Distance, Slot: m.Slot} }

// ClearAll is the distance and slot of a Clear that empties every slot.
const ClearAll = "All"

// Clear removes figures: one slot, or every slot when both fields are
// ClearAll.
type Clear struct {
	Distance string
	Slot     string
}

// All reports whether c clears every slot.
func (c Clear) All() bool { return c.Distance == ClearAll && c.Slot == ClearAll }

// Choice presents a set of options and locks advancement until one is
// chosen.
type Choice struct {
	Prompt  string
	Options []ChoiceOption
}

// Targets returns the options as a map from option text to target.
func (c Choice) Targets() map[string]Target {
	m := make(map[string]Target, len(c.Options))
	for _, o := range c.Options {
		m[o.Text] = o.Target
	}
	return m
}

// ChoiceOption is one option within a Choice.
type ChoiceOption struct {
	Text   string
	Target Target
}

// Jump moves playback to a target.
type Jump struct {
	Target Target
}

// Label marks a block as a jump destination. Applying it does nothing.
type Label struct {
	Name string
}

// Empty does nothing.
type Empty struct{}

func (SetBackground) commandTag() {}
func (PlayBgm) commandTag()       {}
func (PlayVoice) commandTag()     {}
func (Dialogue) commandTag()      {}
func (Figure) commandTag()        {}
func (Move) commandTag()          {}
func (Clear) commandTag()         {}
func (Choice) commandTag()        {}
func (Jump) commandTag()          {}
func (Label) commandTag()         {}
func (Empty) commandTag()         {}

// Target addresses a label within a script.
type Target struct {
	Script string
	Label  string
}

func (t Target) String() string { return t.Script + ":" + t.Label }

// ParseTarget resolves the target shorthand used by jump and choose:
//
//	script:label  ->  (script, label)
//	script:       ->  (script, start)
//	:label        ->  (current, label)
//	script        ->  (script, start)
//	:             ->  (current, start)
func ParseTarget(s, current string) Target {
	script, label, found := strings.Cut(s, ":")
	if !found {
		return Target{Script: s, Label: StartLabel}
	}
	if script == "" {
		script = current
	}
	if label == "" {
		label = StartLabel
	}
	return Target{Script: script, Label: label}
}

// SlotKey identifies a figure slot on screen.
type SlotKey struct {
	Distance string
	Slot     string
}

func (k SlotKey) String() string { return k.Distance + "/" + k.Slot }

// FigureState is what is (or should be) shown in one slot.
type FigureState struct {
	Character string
	Distance  string
	Body      string
	Face      string
	Slot      string
}

// Key returns the slot of the figure state.
func (s FigureState) Key() SlotKey { return SlotKey{Distance: s.Distance, Slot: s.Slot} }

// Scene is the set of figures on screen, keyed by slot.
type Scene map[SlotKey]FigureState

// Clone returns a copy of the scene.
func (s Scene) Clone() Scene {
	c := make(Scene, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// BlockKind says how many commands a block holds.
type BlockKind int

// Kinds of block.
const (
	EmptyBlock BlockKind = iota
	SingleBlock
	MultiBlock
)

func (k BlockKind) String() string {
	switch k {
	case EmptyBlock:
		return "Empty"
	case SingleBlock:
		return "Single"
	case MultiBlock:
		return "Multiple"
	}
	return fmt.Sprintf("(invalid BlockKind %d)", int(k))
}

// Commands is one compiled block: the commands produced from one paragraph
// of script, in order.
type Commands []Command

// Kind reports whether the block is empty, single, or multiple.
func (c Commands) Kind() BlockKind {
	switch len(c) {
	case 0:
		return EmptyBlock
	case 1:
		return SingleBlock
	}
	return MultiBlock
}
