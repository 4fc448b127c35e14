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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOverlayNearestPreceding(t *testing.T) {
	var o overlay[string]
	o.set(5, "five")
	o.set(1, "one")
	o.set(9, "nine")
	o.set(5, "FIVE")

	if got, want := o.len(), 3; got != want {
		t.Errorf("o.len() = %d, want %d", got, want)
	}

	tests := []struct {
		i      int
		want   string
		wantOK bool
	}{
		{0, "", false},
		{1, "one", true},
		{4, "one", true},
		{5, "FIVE", true},
		{8, "FIVE", true},
		{9, "nine", true},
		{100, "nine", true},
	}
	for _, test := range tests {
		got, ok := o.at(test.i)
		if got != test.want || ok != test.wantOK {
			t.Errorf("o.at(%d) = %q, %t, want %q, %t", test.i, got, ok, test.want, test.wantOK)
		}
	}

	if _, ok := o.get(4); ok {
		t.Error("o.get(4) ok = true, want false")
	}
}

func TestDocumentOverlaysMatchDeclarations(t *testing.T) {
	doc, err := Compile("s", "@bg a\nX“1”\n\nX“2”\n\n@bg b\n@bgm m\nX“3”\n\nX“4”\n")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantBg := []string{"a", "a", "b", "b"}
	for i, want := range wantBg {
		if got, _ := doc.BackgroundAt(i); got != want {
			t.Errorf("doc.BackgroundAt(%d) = %q, want %q", i, got, want)
		}
	}
	if _, ok := doc.BgmAt(1); ok {
		t.Error("doc.BgmAt(1) ok = true, want false")
	}
	if got, _ := doc.BgmAt(3); got != "m" {
		t.Errorf("doc.BgmAt(3) = %q, want %q", got, "m")
	}
}

func TestDocumentSeekPending(t *testing.T) {
	doc, err := Compile("s", "@bg a\n@bgm m\n@fg c|near|b|f|1\nX“1”\n\nX“2”\n")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	doc.seek(1)
	p, ok := doc.takePending()
	if !ok {
		t.Fatal("doc.takePending() ok = false after seek")
	}
	want := Pending{
		Background:    "a",
		HasBackground: true,
		Bgm:           BgmPlay,
		BgmName:       "m",
		Figures: Scene{
			{Distance: "near", Slot: "1"}: {Character: "c", Distance: "near", Body: "b", Face: "f", Slot: "1"},
		},
		HasFigures: true,
	}
	if diff := cmp.Diff(p, want); diff != "" {
		t.Errorf("pending diff (-got +want):\n%s", diff)
	}
	if _, ok := doc.takePending(); ok {
		t.Error("doc.takePending() ok = true on second call, want false")
	}

	// Music already playing is kept.
	doc.currentBgm = "m"
	doc.seek(0)
	if p, _ := doc.takePending(); p.Bgm != BgmKeep {
		t.Errorf("pending Bgm = %v, want BgmKeep", p.Bgm)
	}
}

func TestDocumentSeekStopsMusic(t *testing.T) {
	doc, err := Compile("s", "X“1”\n\n@bgm m\nX“2”\n")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	doc.currentBgm = "m"
	doc.seek(0)
	p, _ := doc.takePending()
	if p.Bgm != BgmStop {
		t.Errorf("pending Bgm = %v, want BgmStop", p.Bgm)
	}
	if p.HasBackground || p.HasFigures {
		t.Errorf("pending = %+v, want no background or figures", p)
	}

	// Nothing to stop when nothing is playing.
	doc.currentBgm = ""
	doc.seek(0)
	if p, _ := doc.takePending(); p.Bgm != BgmKeep {
		t.Errorf("pending Bgm = %v with no music, want BgmKeep", p.Bgm)
	}
}

func TestBacklogWindow(t *testing.T) {
	doc := newDocument("s")
	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		doc.pushBacklog("X", s)
	}
	texts := func(es []BacklogEntry) string {
		var sb strings.Builder
		for _, e := range es {
			sb.WriteString(e.Text)
		}
		return sb.String()
	}

	if got, want := texts(doc.BacklogView()), "cdef"; got != want {
		t.Errorf("BacklogView() = %q, want %q", got, want)
	}
	doc.scrollBacklog(1)
	if got, want := texts(doc.BacklogView()), "bcde"; got != want {
		t.Errorf("after scroll 1, BacklogView() = %q, want %q", got, want)
	}
	doc.scrollBacklog(10)
	if got, want := texts(doc.BacklogView()), "abcd"; got != want {
		t.Errorf("after scroll 10, BacklogView() = %q, want %q", got, want)
	}
	doc.scrollBacklog(-10)
	if got, want := texts(doc.BacklogView()), "cdef"; got != want {
		t.Errorf("after scroll -10, BacklogView() = %q, want %q", got, want)
	}

	next := newDocument("t")
	next.adoptBacklog(doc)
	if got, want := texts(next.Backlog()), "abcdef"; got != want {
		t.Errorf("adopted Backlog() = %q, want %q", got, want)
	}
	if got := next.Backlog()[0].Script; got != "s" {
		t.Errorf("adopted Backlog()[0].Script = %q, want %q", got, "s")
	}
}

func TestBacklogShortHistoryDoesNotScroll(t *testing.T) {
	doc := newDocument("s")
	doc.pushBacklog("X", "a")
	doc.scrollBacklog(3)
	if got := len(doc.BacklogView()); got != 1 {
		t.Errorf("len(BacklogView()) = %d, want 1", got)
	}
}

func TestSetExplain(t *testing.T) {
	doc := newDocument("s")
	doc.setExplain("short")
	if got, want := doc.Explain(), "short..."; got != want {
		t.Errorf("Explain() = %q, want %q", got, want)
	}
	doc.setExplain("あいうえおかきくけこさしすせそたちつてと")
	if got, want := doc.Explain(), "あいうえおかきくけこさしすせそたちつ..."; got != want {
		t.Errorf("Explain() = %q, want %q", got, want)
	}
}
