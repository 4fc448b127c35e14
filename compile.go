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
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// SupportedVersion is the only script version Compile accepts.
const SupportedVersion = 1

// Dialogue quotation marks.
const (
	openQuote  = "“"
	closeQuote = "”"
)

// srcLine is a trimmed, non-blank line of script with its 1-based line
// number.
type srcLine struct {
	num  int
	text string
}

// Compile compiles script text into a Document. Compilation is all or
// nothing: on error, no Document is returned.
func Compile(name, text string) (*Document, error) {
	c := &compiler{doc: newDocument(name)}
	if err := c.compile(text); err != nil {
		return nil, fmt.Errorf("compiling %q: %w", name, err)
	}
	return c.doc, nil
}

type compiler struct {
	doc *Document

	// delayed figures that settle from the next block on.
	deferred []FigureState
}

func (c *compiler) compile(text string) error {
	text = norm.NFC.String(text)
	var para []srcLine
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if err := c.paragraph(para); err != nil {
				return err
			}
			para = para[:0]
			continue
		}
		para = append(para, srcLine{num: n + 1, text: line})
	}
	if err := c.paragraph(para); err != nil {
		return err
	}
	if _, ok := c.doc.labels[StartLabel]; !ok {
		c.doc.labels[StartLabel] = 0
	}
	return nil
}

// paragraph compiles one blank-line separated paragraph into at most one
// block.
func (c *compiler) paragraph(lines []srcLine) error {
	if len(lines) == 0 {
		return nil
	}
	// Directives index by the block this paragraph will become. Only
	// paragraphs that emit commands take an index.
	idx := len(c.doc.Blocks)
	if len(c.deferred) > 0 {
		sc := c.scene(idx)
		for _, st := range c.deferred {
			sc[st.Key()] = st
		}
		c.deferred = nil
	}
	var block Commands

lineLoop:
	for i, ln := range lines {
		switch {
		case strings.HasPrefix(ln.text, "@"):
			if strings.HasPrefix(ln.text, "@choose") {
				cmd, err := c.choose(idx, ln, lines[i+1:])
				if err != nil {
					return err
				}
				block = append(block, cmd)
				break lineLoop
			}
			cmd, err := c.directive(idx, ln)
			if err != nil {
				return err
			}
			block = append(block, cmd)

		case strings.HasPrefix(ln.text, "%"):
			if err := c.version(ln); err != nil {
				return err
			}
			// A version line takes the whole paragraph.
			break lineLoop

		case strings.HasPrefix(ln.text, "#"):
			// comment

		case strings.Contains(ln.text, openQuote):
			speaker, rest, _ := strings.Cut(ln.text, openQuote)
			text, ok := strings.CutSuffix(rest, closeQuote)
			if !ok {
				return MalformedDialogueErr{Line: ln.num, Content: ln.text}
			}
			block = append(block, Dialogue{
				Speaker: strings.TrimSpace(speaker),
				Text:    strings.TrimSpace(text),
			})
			// Dialogue ends the paragraph.
			break lineLoop

		default:
			return UnknownLineErr{Line: ln.num, Content: ln.text}
		}
	}

	if len(block) > 0 {
		c.doc.Blocks = append(c.doc.Blocks, block)
	}
	return nil
}

func (c *compiler) version(ln srcLine) error {
	name, arg, found := strings.Cut(ln.text[1:], " ")
	if !found {
		return InvalidCommandErr{Line: ln.num, Content: ln.text}
	}
	if name != "version" {
		return UnknownLineErr{Line: ln.num, Content: ln.text}
	}
	arg = strings.TrimSpace(arg)
	if v, err := strconv.Atoi(arg); err != nil || v != SupportedVersion {
		return UnsupportedVersionErr{Need: SupportedVersion, Indeed: arg}
	}
	return nil
}

func (c *compiler) directive(idx int, ln srcLine) (Command, error) {
	name, arg, found := strings.Cut(ln.text[1:], " ")
	arg = strings.TrimSpace(arg)
	if !found || arg == "" {
		return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
	}

	switch name {
	case "bg":
		c.doc.backgrounds.set(idx, arg)
		return SetBackground{Name: arg}, nil

	case "bgm":
		c.doc.bgms.set(idx, arg)
		return PlayBgm{Name: arg}, nil

	case "voice":
		fields := splitFields(arg)
		if len(fields) < 2 {
			return nil, TooShortErr{Line: ln.num, Content: ln.text, Need: 2}
		}
		return PlayVoice{Character: fields[0], Clip: fields[1]}, nil

	case "fg":
		fields := splitFields(arg)
		if len(fields) < 5 {
			return nil, TooShortErr{Line: ln.num, Content: ln.text, Need: 5}
		}
		if len(fields) > 6 {
			return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
		}
		fig := Figure{
			Character: fields[0],
			Distance:  fields[1],
			Body:      fields[2],
			Face:      fields[3],
			Slot:      fields[4],
		}
		if len(fields) == 6 {
			d, err := parseDelay(fields[5])
			if err != nil {
				return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
			}
			fig.Delay = d
		}
		c.recordFigure(idx, fig)
		return fig, nil

	case "move":
		fields := splitFields(arg)
		if len(fields) < 7 {
			return nil, TooShortErr{Line: ln.num, Content: ln.text, Need: 7}
		}
		if len(fields) > 8 {
			return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
		}
		mv := Move{
			Character: fields[0],
			Distance:  fields[1],
			Body:      fields[2],
			Face:      fields[3],
			Slot:      fields[4],
			Action:    MoveAction(fields[5]),
		}
		if !mv.Action.valid() {
			return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
		}
		n, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
		}
		mv.RepeatCount = n
		if len(fields) == 8 {
			d, err := parseDelay(fields[7])
			if err != nil {
				return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
			}
			mv.Delay = d
		}
		c.recordMove(idx, mv)
		return mv, nil

	case "clear":
		var clr Clear
		if arg == ClearAll {
			clr = Clear{Distance: ClearAll, Slot: ClearAll}
		} else {
			fields := splitFields(arg)
			if len(fields) != 2 {
				return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
			}
			clr = Clear{Distance: fields[0], Slot: fields[1]}
		}
		c.doc.clearMarks[idx] = true
		c.recordClear(idx, clr)
		return clr, nil

	case "jump":
		return Jump{Target: ParseTarget(arg, c.doc.Name)}, nil

	case "label":
		c.doc.labels[arg] = idx
		return Label{Name: arg}, nil
	}
	return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
}

// choose compiles a choose directive. It consumes the rest of the
// paragraph: an optional prompt line, then one line per option of the form
// "text target".
func (c *compiler) choose(idx int, ln srcLine, rest []srcLine) (Command, error) {
	name, arg, _ := strings.Cut(ln.text[1:], " ")
	if name != "choose" {
		return nil, InvalidCommandErr{Line: ln.num, Content: ln.text}
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return nil, ChooseErr{Line: ln.num, Content: ln.text}
	}
	if len(rest) < n {
		return nil, ChooseErr{Line: ln.num, Content: ln.text}
	}
	var ch Choice
	if len(rest) > n {
		ch.Prompt = rest[0].text
		rest = rest[1:]
	}
	for _, opt := range rest[:n] {
		text, target, found := strings.Cut(opt.text, " ")
		text, target = strings.TrimSpace(text), strings.TrimSpace(target)
		if !found || text == "" || target == "" {
			return nil, ChooseErr{Line: opt.num, Content: opt.text}
		}
		t := ParseTarget(target, c.doc.Name)
		ch.Options = append(ch.Options, ChoiceOption{Text: text, Target: t})
		c.doc.choices[text] = t
	}
	return ch, nil
}

// scene returns the figure snapshot for block idx, creating it from the
// preceding snapshot if this block has not declared one yet.
func (c *compiler) scene(idx int) Scene {
	if s, ok := c.doc.figures.get(idx); ok {
		return s
	}
	prev, _ := c.doc.figures.at(idx - 1)
	s := prev.Clone()
	c.doc.figures.set(idx, s)
	return s
}

func (c *compiler) remember(idx int, st FigureState) {
	k := st.Key()
	c.doc.history[k] = append(c.doc.history[k], figureDecl{index: idx, body: st.Body, face: st.Face})
}

// recordFigure updates the figure overlay for a fg directive. A delayed
// figure with its own body only appears once the figure pipeline releases
// it, so it joins the snapshot from the next block on.
func (c *compiler) recordFigure(idx int, fig Figure) {
	st := fig.State()
	st.Body, st.Face = c.doc.latestFigure(st.Key(), idx, st.Body, st.Face)
	if fig.Body != "" && fig.Delay > 0 {
		c.deferred = append(c.deferred, st)
	} else {
		c.scene(idx)[st.Key()] = st
	}
	c.remember(idx, st)
}

// recordMove updates the figure overlay for gestures that end with the
// figure in a different slot or gone.
func (c *compiler) recordMove(idx int, mv Move) {
	if mv.RepeatCount <= 0 {
		// Repeats until cleared; never settles.
		return
	}
	var dest string
	switch mv.Action {
	case ActionTo0:
		dest = "0"
	case ActionTo2:
		dest = "2"
	case ActionBackAndClean:
		delete(c.scene(idx), mv.Key())
		return
	default:
		return
	}
	s := c.scene(idx)
	delete(s, mv.Key())
	st := FigureState{
		Character: mv.Character,
		Distance:  mv.Distance,
		Slot:      dest,
	}
	st.Body, st.Face = c.doc.latestFigure(mv.Key(), idx, mv.Body, mv.Face)
	s[st.Key()] = st
	c.remember(idx, st)
}

func (c *compiler) recordClear(idx int, clr Clear) {
	s := c.scene(idx)
	if clr.All() {
		for k := range s {
			delete(s, k)
		}
		return
	}
	delete(s, SlotKey{Distance: clr.Distance, Slot: clr.Slot})
}

func splitFields(arg string) []string {
	fields := strings.Split(arg, "|")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// parseDelay parses a delay field in milliseconds. An empty field is no
// delay.
func parseDelay(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	ms, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, fmt.Errorf("negative delay %d", ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
