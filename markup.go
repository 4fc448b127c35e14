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
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// SegmentBreak starts a new narration segment within a line of dialogue.
// A line is shown in at most three segments.
const SegmentBreak = "{nns}"

// MaxSegments is the number of panes a line of dialogue can be split into.
const MaxSegments = 3

var (
	markupLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Break", Pattern: `\{nns\}`, Action: nil},
			{Name: "Char", Pattern: `\{|[^\{]+`, Action: nil},
		},
	})

	markupParser = participle.MustBuild(
		&parsedText{},
		participle.Lexer(markupLexer),
	)
)

// parsedText is a line of dialogue broken into runs of text and segment
// breaks.
type parsedText struct {
	Fragments []*textFragment `parser:"@@*"`
}

type textFragment struct {
	Break bool   `parser:"@Break"`
	Text  string `parser:"| @Char"`
}

func parseText(text string) (*parsedText, error) {
	pt := new(parsedText)
	if text == "" {
		return pt, nil
	}
	if err := markupParser.ParseString("", text, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// revealStops returns the byte offsets at which each step of a reveal ends.
// Every rune is a step of its own, except that a segment break is revealed
// together with the rune after it.
func revealStops(text string) []int {
	pt, err := parseText(text)
	if err != nil {
		// Reveal the whole line at once.
		return []int{len(text)}
	}
	var stops []int
	off := 0
	for _, f := range pt.Fragments {
		if f.Break {
			off += len(SegmentBreak)
			continue
		}
		for s := f.Text; s != ""; {
			_, n := utf8.DecodeRuneInString(s)
			off += n
			s = s[n:]
			stops = append(stops, off)
		}
	}
	if len(stops) == 0 || stops[len(stops)-1] != len(text) {
		stops = append(stops, len(text))
	}
	return stops
}

// Segments splits a line of dialogue into display panes at segment breaks.
// Text after a third segment's break stays in the third pane.
func Segments(text string) [MaxSegments]string {
	var panes [MaxSegments]string
	pt, err := parseText(text)
	if err != nil {
		panes[0] = strings.TrimSpace(text)
		return panes
	}
	var sb [MaxSegments]strings.Builder
	n := 0
	for _, f := range pt.Fragments {
		if f.Break {
			if n < MaxSegments-1 {
				n++
			}
			continue
		}
		sb[n].WriteString(f.Text)
	}
	for i := range panes {
		panes[i] = strings.TrimSpace(sb[i].String())
	}
	return panes
}

// PlainText removes segment breaks from a line of dialogue.
func PlainText(text string) string {
	var parts []string
	for _, p := range Segments(text) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
