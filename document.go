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
	"sort"
	"unicode/utf8"
)

// BacklogWindow is the number of backlog entries shown at once.
const BacklogWindow = 4

// explainLimit is the number of runes of text kept in a save-slot
// explanation.
const explainLimit = 18

// overlay is a sparse block-indexed setting. A value persists from the
// block it is declared at until the next declaration.
type overlay[T any] struct {
	keys []int // sorted
	vals map[int]T
}

func (o *overlay[T]) set(i int, v T) {
	if o.vals == nil {
		o.vals = make(map[int]T)
	}
	if _, ok := o.vals[i]; !ok {
		n := sort.SearchInts(o.keys, i)
		o.keys = append(o.keys, 0)
		copy(o.keys[n+1:], o.keys[n:])
		o.keys[n] = i
	}
	o.vals[i] = v
}

// at returns the value declared at the greatest key <= i.
func (o *overlay[T]) at(i int) (T, bool) {
	n := sort.SearchInts(o.keys, i+1)
	if n == 0 {
		var zero T
		return zero, false
	}
	return o.vals[o.keys[n-1]], true
}

// get returns the value declared exactly at i.
func (o *overlay[T]) get(i int) (T, bool) {
	v, ok := o.vals[i]
	return v, ok
}

// len returns the number of declarations.
func (o *overlay[T]) len() int { return len(o.keys) }

// BacklogEntry is one line of dialogue history.
type BacklogEntry struct {
	Speaker string
	Text    string
	Script  string

	// Index is the cursor after the line's block was pulled, which is where
	// a save taken at that moment would resume.
	Index int
}

// BgmChange is what a pending overlay does to the background music.
type BgmChange int

// Pending background music changes.
const (
	BgmKeep BgmChange = iota
	BgmPlay
	BgmStop
)

// Pending holds the one-shot overlays computed by a jump, to be rendered
// together with the landing block.
type Pending struct {
	Background    string
	HasBackground bool

	Bgm     BgmChange
	BgmName string

	Figures    Scene
	HasFigures bool
}

// figureDecl records a figure directive for body and face inheritance.
type figureDecl struct {
	index int
	body  string
	face  string
}

// Document is a compiled script plus the runtime state of playing it.
type Document struct {
	// Name is the script name, used to resolve relative jump targets.
	Name string

	// Blocks are the compiled blocks in order. Empty paragraphs produce no
	// block.
	Blocks []Commands

	cursor      int
	labels      map[string]int
	choices     map[string]Target
	bgms        overlay[string]
	backgrounds overlay[string]
	figures     overlay[Scene]
	history     map[SlotKey][]figureDecl
	clearMarks  map[int]bool

	currentBgm string
	pending    Pending
	hasPending bool

	backlog       []BacklogEntry
	backlogOffset int
	explain       string
	choiceLock    bool
}

func newDocument(name string) *Document {
	return &Document{
		Name:       name,
		labels:     make(map[string]int),
		choices:    make(map[string]Target),
		history:    make(map[SlotKey][]figureDecl),
		clearMarks: make(map[int]bool),
	}
}

// Len returns the number of blocks.
func (d *Document) Len() int { return len(d.Blocks) }

// Cursor returns the index of the next block to be pulled.
func (d *Document) Cursor() int { return d.cursor }

// next pulls the block at the cursor and advances the cursor past it.
func (d *Document) next() (Commands, bool) {
	if d.cursor < 0 || d.cursor >= len(d.Blocks) {
		return nil, false
	}
	b := d.Blocks[d.cursor]
	d.cursor++
	return b, true
}

// LabelIndex returns the block index of a label.
func (d *Document) LabelIndex(name string) (int, bool) {
	i, ok := d.labels[name]
	return i, ok
}

// Labels returns a copy of the label table.
func (d *Document) Labels() map[string]int {
	m := make(map[string]int, len(d.labels))
	for k, v := range d.labels {
		m[k] = v
	}
	return m
}

// ChoiceTarget returns the target registered for a choice text.
func (d *Document) ChoiceTarget(text string) (Target, bool) {
	t, ok := d.choices[text]
	return t, ok
}

// BgmAt returns the background music in effect at block i.
func (d *Document) BgmAt(i int) (string, bool) { return d.bgms.at(i) }

// BackgroundAt returns the background in effect at block i.
func (d *Document) BackgroundAt(i int) (string, bool) { return d.backgrounds.at(i) }

// FiguresAt returns the scene in effect at block i.
func (d *Document) FiguresAt(i int) (Scene, bool) {
	s, ok := d.figures.at(i)
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// IsClearMark reports whether block i clears figures.
func (d *Document) IsClearMark(i int) bool { return d.clearMarks[i] }

// latestFigure fills an empty body or face from the nearest figure
// declared in the same slot at or before block i.
func (d *Document) latestFigure(key SlotKey, i int, body, face string) (string, string) {
	decls := d.history[key]
	for j := len(decls) - 1; j >= 0 && (body == "" || face == ""); j-- {
		if decls[j].index > i {
			continue
		}
		if body == "" && decls[j].body != "" {
			body = decls[j].body
		}
		if face == "" && decls[j].face != "" {
			face = decls[j].face
		}
	}
	return body, face
}

// CurrentBgm returns the name of the music playing.
func (d *Document) CurrentBgm() string { return d.currentBgm }

// Explain returns the short description used for save slots.
func (d *Document) Explain() string { return d.explain }

func (d *Document) setExplain(s string) {
	if utf8.RuneCountInString(s) > explainLimit {
		s = string([]rune(s)[:explainLimit])
	}
	d.explain = s + "..."
}

// ChoiceLocked reports whether a choice is awaiting an answer.
func (d *Document) ChoiceLocked() bool { return d.choiceLock }

// seek moves the cursor to i and computes the pending overlays for it.
func (d *Document) seek(i int) {
	d.cursor = i
	p := Pending{}
	if bgm, ok := d.bgms.at(i); !ok {
		if d.currentBgm != "" {
			p.Bgm = BgmStop
		}
	} else if bgm != d.currentBgm {
		p.Bgm, p.BgmName = BgmPlay, bgm
	}
	p.Background, p.HasBackground = d.backgrounds.at(i)
	p.Figures, p.HasFigures = d.FiguresAt(i)
	d.pending, d.hasPending = p, true
}

// takePending returns and clears the pending overlays.
func (d *Document) takePending() (Pending, bool) {
	p, ok := d.pending, d.hasPending
	d.pending, d.hasPending = Pending{}, false
	return p, ok
}

func (d *Document) pushBacklog(speaker, text string) {
	d.backlog = append(d.backlog, d.backlogEntry(speaker, text))
}

// backlogEntry returns an entry for text at the current position.
func (d *Document) backlogEntry(speaker, text string) BacklogEntry {
	return BacklogEntry{
		Speaker: speaker,
		Text:    text,
		Script:  d.Name,
		Index:   d.cursor,
	}
}

// Backlog returns all of the dialogue history.
func (d *Document) Backlog() []BacklogEntry {
	return append([]BacklogEntry(nil), d.backlog...)
}

// BacklogView returns the window of history currently scrolled to. Offset 0
// is the most recent BacklogWindow entries.
func (d *Document) BacklogView() []BacklogEntry {
	end := len(d.backlog) - d.backlogOffset
	start := end - BacklogWindow
	if start < 0 {
		start = 0
	}
	return append([]BacklogEntry(nil), d.backlog[start:end]...)
}

// scrollBacklog moves the backlog window back (positive) or forward
// (negative), clamped to the available history.
func (d *Document) scrollBacklog(delta int) {
	off := d.backlogOffset + delta
	max := len(d.backlog) - BacklogWindow
	if off > max {
		off = max
	}
	if off < 0 {
		off = 0
	}
	d.backlogOffset = off
}

// adoptBacklog carries history over from the previous document.
func (d *Document) adoptBacklog(prev *Document) {
	if prev == nil {
		return
	}
	d.backlog = prev.backlog
	d.backlogOffset = prev.backlogOffset
}
