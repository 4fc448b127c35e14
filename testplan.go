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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// TestPlan implements test plans. A test plan is a display that expects
// specific backgrounds, music, voices, figures, lines, and options from the
// engine, and picks options as the plan says.
//
// Steps are written "type: contents", one per line:
//
//	background: <path>
//	bgm: <path> | stop
//	voice: <path>
//	figure: <distance>/<slot> <character> <body> <face>
//	clear: <distance>/<slot>
//	line: [<speaker>: ]<text>
//	option: <text>
//	select: <1-based option number>
//
// Offsets, backlogs, save slots, and clearing every slot are not checked.
type TestPlan struct {
	Steps []TestStep
	Step  int

	// Prefs is returned by Settings.
	Prefs Settings

	speaker  string
	options  []string
	selected string
	chose    bool
	err      error

	FakeDisplay // implements remaining methods
}

// LoadTestPlanFile is a convenient function for loading a test plan given a
// file path.
func LoadTestPlanFile(testPlanPath string) (*TestPlan, error) {
	tpf, err := os.Open(testPlanPath)
	if err != nil {
		return nil, fmt.Errorf("opening testplan file: %w", err)
	}
	defer tpf.Close()
	tp, err := ReadTestPlan(tpf)
	if err != nil {
		return nil, fmt.Errorf("reading testplan file: %w", err)
	}
	return tp, nil
}

// ReadTestPlan reads a testplan from an io.Reader into a TestPlan.
func ReadTestPlan(r io.Reader) (*TestPlan, error) {
	tp := &TestPlan{Prefs: FakeDisplay{}.Settings()}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		txt := strings.TrimSpace(sc.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			// Skip blanks and comments
			continue
		}
		if strings.HasPrefix(txt, "stop") {
			// Superfluous stop at end of file
			break
		}
		tok := strings.SplitN(txt, ":", 2)
		if len(tok) < 2 {
			return nil, fmt.Errorf("malformed step %q", txt)
		}
		tp.Steps = append(tp.Steps, TestStep{
			Type:     strings.TrimSpace(tok[0]),
			Contents: strings.TrimSpace(tok[1]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tp, nil
}

// TestStep is a step in a test plan.
type TestStep struct {
	Type     string
	Contents string
}

func (s TestStep) String() string { return s.Type + ": " + s.Contents }

// Complete checks if the test plan was completed.
func (p *TestPlan) Complete() error {
	if p.err != nil {
		return p.err
	}
	if p.Step != len(p.Steps) {
		return fmt.Errorf("on step %d %v", p.Step, p.Steps[p.Step])
	}
	return nil
}

// Selection returns the option the plan selected, once.
func (p *TestPlan) Selection() (string, bool) {
	s, ok := p.selected, p.chose
	p.selected, p.chose = "", false
	return s, ok
}

// Play drives e until the script ends, answering choices as the plan
// selects them, then checks that the plan was completed.
func (p *TestPlan) Play(e *Engine) error {
	for {
		if p.err != nil {
			return p.err
		}
		if text, ok := p.Selection(); ok {
			if err := e.Choose(text); err != nil {
				return err
			}
		}
		err := e.Advance()
		if errors.Is(err, ErrScriptEnd) {
			break
		}
		if err != nil {
			return err
		}
	}
	return p.Complete()
}

// expect checks the next step. The first failure sticks.
func (p *TestPlan) expect(typ, contents string) error {
	if p.err != nil {
		return p.err
	}
	if p.Step >= len(p.Steps) {
		p.err = fmt.Errorf("testplan got %s %q after end", typ, contents)
		return p.err
	}
	step := p.Steps[p.Step]
	if step.Type != typ {
		p.err = fmt.Errorf("testplan step %d got %s %q, want %v", p.Step, typ, contents, step)
		return p.err
	}
	p.Step++
	if step.Contents != contents {
		p.err = fmt.Errorf("testplan step %d got %s %q, want %q", p.Step-1, typ, contents, step.Contents)
		return p.err
	}
	return nil
}

// Settings returns p.Prefs.
func (p *TestPlan) Settings() Settings { return p.Prefs }

// SetBackground checks the background.
func (p *TestPlan) SetBackground(path string) error {
	return p.expect("background", path)
}

// SetSpeaker records the speaker for the next line.
func (p *TestPlan) SetSpeaker(name string) { p.speaker = name }

// SetDialogue checks the line, prefixed by its speaker.
func (p *TestPlan) SetDialogue(panes [MaxSegments]string) {
	var parts []string
	for _, s := range panes {
		if s != "" {
			parts = append(parts, s)
		}
	}
	line := strings.Join(parts, " ")
	if p.speaker != "" {
		line = p.speaker + ": " + line
	}
	p.expect("line", line)
}

// SetFigure checks the figure.
func (p *TestPlan) SetFigure(key SlotKey, img FigureImage) error {
	st := img.State
	return p.expect("figure", fmt.Sprintf("%v %s %s %s", key, st.Character, st.Body, st.Face))
}

// ClearFigure checks the slot being cleared.
func (p *TestPlan) ClearFigure(key SlotKey) {
	p.expect("clear", key.String())
}

// SetChoices checks the options, then selects the option specified in the
// plan.
func (p *TestPlan) SetChoices(prompt string, options []string) {
	if len(options) == 0 {
		return
	}
	for _, opt := range options {
		if p.expect("option", opt) != nil {
			return
		}
	}
	// Next step should be a select
	if p.Step >= len(p.Steps) {
		p.err = errors.New("next testplan step after end")
		return
	}
	step := p.Steps[p.Step]
	if step.Type != "select" {
		p.err = fmt.Errorf("testplan got select, want %q", step.Type)
		return
	}
	p.Step++
	n, err := strconv.Atoi(step.Contents)
	if err != nil {
		p.err = fmt.Errorf("converting testplan step to int: %w", err)
		return
	}
	if n < 1 || n > len(options) {
		p.err = fmt.Errorf("testplan selects option %d of %d", n, len(options))
		return
	}
	p.selected, p.chose = options[n-1], true
}

// BGM returns an audio channel that checks music against the plan.
func (p *TestPlan) BGM() AudioChannel { return planAudio{plan: p, typ: "bgm"} }

// Voice returns an audio channel that checks voices against the plan.
func (p *TestPlan) Voice() AudioChannel { return planAudio{plan: p, typ: "voice"} }

type planAudio struct {
	plan *TestPlan
	typ  string
}

func (a planAudio) PlayLoop(path string, _ float64) error { return a.plan.expect(a.typ, path) }
func (a planAudio) PlayOnce(path string, _ float64) error { return a.plan.expect(a.typ, path) }
func (a planAudio) Stop()                                 { a.plan.expect(a.typ, "stop") }
func (a planAudio) SetVolume(float64)                     {}
