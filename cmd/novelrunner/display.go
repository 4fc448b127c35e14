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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DrJosh9000/novel"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// display is a novel.Display that also reads the player's input.
type display interface {
	novel.Display

	// ReadInput turns keys into engine requests until the player quits or
	// input ends.
	ReadInput(ctx context.Context, post func(novel.Request) error) error

	Close()
}

// errQuit ends ReadInput when the player quits.
var errQuit = errors.New("quit")

// controls is the input state shared by both displays.
type controls struct {
	mu       sync.Mutex
	settings novel.Settings
	options  []string
}

func (c *controls) Settings() novel.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *controls) setOptions(opts []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = opts
}

// key maps one key to a request.
func (c *controls) key(r rune) (novel.Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case r == ' ':
		return novel.ClickRequest{}, nil
	case r >= '1' && r <= '9':
		n := int(r - '1')
		if n >= len(c.options) {
			return nil, nil
		}
		return novel.ChooseRequest{Text: c.options[n]}, nil
	case r == 'a':
		return novel.ToggleAutoRequest{}, nil
	case r == 's':
		return novel.ToggleSkipRequest{}, nil
	case r == 'w':
		return novel.SaveRequest{Slot: 0}, nil
	case r == 'l':
		return novel.LoadRequest{Slot: 0}, nil
	case r == '+':
		c.settings.MainVolume = min(c.settings.MainVolume+10, 100)
		return novel.VolumeRequest{}, nil
	case r == '-':
		c.settings.MainVolume = max(c.settings.MainVolume-10, 0)
		return novel.VolumeRequest{}, nil
	case r == 'q':
		return nil, errQuit
	}
	return nil, nil
}

// lineDisplay prints events as lines of text, for when there is no
// terminal to draw on.
type lineDisplay struct {
	controls
	novel.FakeDisplay

	w       io.Writer
	speaker string
}

func newLineDisplay(w io.Writer, user *novel.UserConfig) *lineDisplay {
	d := &lineDisplay{controls: controls{settings: user.Settings()}, w: w}
	// Lines are printed whole.
	d.settings.TextSpeed = 0
	return d
}

func (d *lineDisplay) Settings() novel.Settings { return d.controls.Settings() }

func (d *lineDisplay) SetBackground(path string) error {
	fmt.Fprintf(d.w, "[background %s]\n", path)
	return nil
}

func (d *lineDisplay) SetSpeaker(name string) { d.speaker = name }

func (d *lineDisplay) SetDialogue(panes [novel.MaxSegments]string) {
	text := strings.Join(nonEmpty(panes[:]), " ")
	if d.speaker != "" {
		text = d.speaker + ": " + text
	}
	fmt.Fprintln(d.w, text)
}

func (d *lineDisplay) SetFigure(key novel.SlotKey, img novel.FigureImage) error {
	fmt.Fprintf(d.w, "[%s enters %v as %s/%s]\n", img.State.Character, key, img.State.Body, img.State.Face)
	return nil
}

func (d *lineDisplay) SetChoices(prompt string, options []string) {
	d.setOptions(options)
	if len(options) == 0 {
		return
	}
	if prompt != "" {
		fmt.Fprintln(d.w, prompt)
	}
	for i, o := range options {
		fmt.Fprintf(d.w, "  %d: %s\n", i+1, o)
	}
}

func (d *lineDisplay) ReadInput(ctx context.Context, post func(novel.Request) error) error {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		r := ' '
		if line != "" {
			r = []rune(line)[0]
		}
		req, err := d.key(r)
		if err == errQuit {
			return nil
		}
		if req == nil {
			continue
		}
		if err := post(req); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (d *lineDisplay) Close() {}

// screenDisplay draws the novel on a tcell screen.
type screenDisplay struct {
	controls

	screen    tcell.Screen
	closeOnce sync.Once

	// Everything below is guarded by controls.mu.
	background string
	speaker    string
	panes      [novel.MaxSegments]string
	figures    map[novel.SlotKey]novel.FigureImage
	offsets    map[novel.SlotKey][2]float64
	prompt     string
	backlog    []novel.BacklogEntry
	slots      []novel.SaveRecord
	status     string
}

func newScreenDisplay(user *novel.UserConfig) (*screenDisplay, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault)
	s.Clear()
	return &screenDisplay{
		controls: controls{settings: user.Settings()},
		screen:   s,
		figures:  make(map[novel.SlotKey]novel.FigureImage),
		offsets:  make(map[novel.SlotKey][2]float64),
	}, nil
}

// update changes the state under the lock and redraws.
func (d *screenDisplay) update(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f()
	d.draw()
}

func (d *screenDisplay) Settings() novel.Settings { return d.controls.Settings() }

func (d *screenDisplay) SetBackground(path string) error {
	d.update(func() { d.background = path })
	return nil
}

func (d *screenDisplay) SetSpeaker(name string) {
	d.update(func() { d.speaker = name })
}

func (d *screenDisplay) SetDialogue(panes [novel.MaxSegments]string) {
	d.update(func() { d.panes = panes })
}

func (d *screenDisplay) SetFigure(key novel.SlotKey, img novel.FigureImage) error {
	// Shown by name either way; the engine logs a missing file.
	d.update(func() { d.figures[key] = img })
	_, err := os.Stat(img.BodyPath)
	return err
}

func (d *screenDisplay) ClearFigure(key novel.SlotKey) {
	d.update(func() {
		delete(d.figures, key)
		delete(d.offsets, key)
	})
}

func (d *screenDisplay) ClearAllFigures() {
	d.update(func() {
		d.figures = make(map[novel.SlotKey]novel.FigureImage)
		d.offsets = make(map[novel.SlotKey][2]float64)
	})
}

func (d *screenDisplay) SetFigureOffset(key novel.SlotKey, dx, dy float64) {
	d.update(func() { d.offsets[key] = [2]float64{dx, dy} })
}

func (d *screenDisplay) SetChoices(prompt string, options []string) {
	d.update(func() {
		d.prompt = prompt
		d.options = options
	})
}

func (d *screenDisplay) SetBacklog(entries []novel.BacklogEntry) {
	d.update(func() { d.backlog = entries })
}

func (d *screenDisplay) SetSaveSlots(slots []novel.SaveRecord) {
	d.update(func() { d.slots = slots })
}

func (d *screenDisplay) setStatus(s string) {
	d.update(func() { d.status = s })
}

func (d *screenDisplay) ReadInput(ctx context.Context, post func(novel.Request) error) error {
	for ctx.Err() == nil {
		switch ev := d.screen.PollEvent().(type) {
		case nil:
			// Screen finalised.
			return nil

		case *tcell.EventResize:
			d.screen.Sync()
			d.update(func() {})

		case *tcell.EventKey:
			var req novel.Request
			var err error
			switch ev.Key() {
			case tcell.KeyEnter:
				req = novel.ClickRequest{}
			case tcell.KeyUp:
				req = novel.ScrollBacklogRequest{Delta: 1}
			case tcell.KeyDown:
				req = novel.ScrollBacklogRequest{Delta: -1}
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyRune:
				req, err = d.key(ev.Rune())
			}
			if err == errQuit {
				return nil
			}
			if req == nil {
				continue
			}
			if err := post(req); err != nil {
				d.setStatus(err.Error())
				continue
			}
			d.setStatus(describe(req))
		}
	}
	return nil
}

func (d *screenDisplay) Close() {
	d.closeOnce.Do(d.screen.Fini)
}

// draw redraws the whole screen. Callers hold d.mu.
func (d *screenDisplay) draw() {
	s := d.screen
	s.Clear()
	w, h := s.Size()
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	bold := tcell.StyleDefault.Bold(true)

	drawLine(s, 0, 0, w, "Scene: "+d.background, dim)

	// Figures, one per row, indented by their horizontal offset.
	keys := make([]novel.SlotKey, 0, len(d.figures))
	for k := range d.figures {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	for i, k := range keys {
		img := d.figures[k]
		x := 2 + int(d.offsets[k][0]*float64(w))
		if x < 0 {
			x = 0
		}
		drawLine(s, x, 2+i, w-x, fmt.Sprintf("[%v] %s (%s, %s)", k, img.State.Character, img.State.Body, img.State.Face), tcell.StyleDefault)
	}

	// Backlog above the dialogue box.
	y := h - 8 - len(d.backlog)
	for _, b := range d.backlog {
		drawLine(s, 0, y, w, b.Speaker+"  "+novel.PlainText(b.Text), dim)
		y++
	}

	// Dialogue box.
	y = h - 7
	drawLine(s, 0, y, w, strings.Repeat("─", w), dim)
	drawLine(s, 1, y+1, w-1, d.speaker, bold)
	row := y + 2
	for _, line := range wrap(strings.Join(nonEmpty(d.panes[:]), "\n"), w-2) {
		if row >= h-1 {
			break
		}
		drawLine(s, 1, row, w-1, line, tcell.StyleDefault)
		row++
	}

	// Choices overlay the middle of the screen.
	if len(d.options) > 0 {
		cy := h/2 - len(d.options)
		if d.prompt != "" {
			drawLine(s, 4, cy, w-4, d.prompt, bold)
			cy++
		}
		for i, o := range d.options {
			drawLine(s, 4, cy+i, w-4, fmt.Sprintf("%d. %s", i+1, o), tcell.StyleDefault.Reverse(true))
		}
	}

	status := fmt.Sprintf("vol %.0f  %s", d.settings.MainVolume, d.status)
	if len(d.slots) > 0 && !d.slots[0].Empty() {
		status += "  slot 0: " + d.slots[0].Explain
	}
	drawLine(s, 0, h-1, w, status, dim)
	s.Show()
}

// drawLine draws text at (x, y), cut to width cells.
func drawLine(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	text = runewidth.Truncate(text, width, "…")
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

// wrap breaks text into lines no wider than width cells. Newlines in text
// always break.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var sb strings.Builder
		col := 0
		for _, r := range para {
			rw := runewidth.RuneWidth(r)
			if col+rw > width {
				lines = append(lines, sb.String())
				sb.Reset()
				col = 0
			}
			sb.WriteRune(r)
			col += rw
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// describe names a request for the status line.
func describe(r novel.Request) string {
	switch r := r.(type) {
	case novel.ToggleAutoRequest:
		return "auto toggled"
	case novel.ToggleSkipRequest:
		return "skip toggled"
	case novel.SaveRequest:
		return fmt.Sprintf("saved slot %d at %s", r.Slot, time.Now().Format(time.Kitchen))
	case novel.LoadRequest:
		return fmt.Sprintf("loaded slot %d", r.Slot)
	}
	return ""
}
