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
	"strconv"
	"strings"
)

// FormatCommand prints a command in a format convenient for debugging,
// close to the script syntax that produces it. The output is intended for
// human consumption only and may change between incremental versions of
// this package.
func FormatCommand(cmd Command) string {
	switch c := cmd.(type) {
	case SetBackground:
		return "bg " + c.Name
	case PlayBgm:
		return "bgm " + c.Name
	case PlayVoice:
		return "voice " + c.Character + "|" + c.Clip
	case Dialogue:
		return c.Speaker + openQuote + c.Text + closeQuote
	case Figure:
		s := strings.Join([]string{c.Character, c.Distance, c.Body, c.Face, c.Slot}, "|")
		if c.Delay > 0 {
			s += "|" + strconv.FormatInt(c.Delay.Milliseconds(), 10)
		}
		return "fg " + s
	case Move:
		s := strings.Join([]string{c.Character, c.Distance, c.Body, c.Face, c.Slot, string(c.Action), strconv.Itoa(c.RepeatCount)}, "|")
		if c.Delay > 0 {
			s += "|" + strconv.FormatInt(c.Delay.Milliseconds(), 10)
		}
		return "move " + s
	case Clear:
		if c.All() {
			return "clear " + ClearAll
		}
		return "clear " + c.Distance + "|" + c.Slot
	case Choice:
		opts := make([]string, len(c.Options))
		for i, o := range c.Options {
			opts[i] = o.Text + " -> " + o.Target.String()
		}
		return fmt.Sprintf("choose %q [%s]", c.Prompt, strings.Join(opts, ", "))
	case Jump:
		return "jump " + c.Target.String()
	case Label:
		return "label " + c.Name
	case Empty:
		return "empty"
	case gestureStep:
		return fmt.Sprintf("gesture %s %s %v", c.g.move.Action, c.g.move.Key(), c.kind)
	}
	return fmt.Sprintf("%#v", cmd)
}

// FormatDocument prints a compiled document in a format convenient for
// debugging. The output is intended for human consumption only and may
// change between incremental versions of this package.
func FormatDocument(doc *Document) string {
	sb := new(strings.Builder)

	// Reverse label table, names sorted for stable output
	labels := make(map[int][]string)
	labelWidth := 0
	for l, i := range doc.labels {
		labels[i] = append(labels[i], l)
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}
	for _, ls := range labels {
		sort.Strings(ls)
	}
	labelFmt := "% " + strconv.Itoa(labelWidth) + "s: "
	labelSpace := strings.Repeat(" ", labelWidth+2)

	fmt.Fprintf(sb, "%s--- %s ---\n", labelSpace, doc.Name)
	for n, block := range doc.Blocks {
		ls := labels[n]
		for i, cmd := range block {
			if i < len(ls) {
				fmt.Fprintf(sb, labelFmt, ls[i])
			} else {
				fmt.Fprint(sb, labelSpace)
			}
			if i == 0 {
				fmt.Fprintf(sb, "%06d ", n)
			} else {
				fmt.Fprint(sb, "     + ")
			}
			fmt.Fprint(sb, FormatCommand(cmd))
			if i == 0 && doc.clearMarks[n] {
				fmt.Fprint(sb, "  (clears)")
			}
			fmt.Fprintln(sb)
		}
		// Surplus labels on a short block
		for i := len(block); i < len(ls); i++ {
			fmt.Fprintf(sb, labelFmt, ls[i])
			fmt.Fprintln(sb)
		}
	}
	return sb.String()
}
