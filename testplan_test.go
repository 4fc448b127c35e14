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
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var traceOutput = flag.Bool("trace", false, "Log every command applied")

func TestAllTestPlans(t *testing.T) {
	testplans, err := filepath.Glob("testdata/*.testplan")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(testplans) == 0 {
		t.Fatal("no testplans found")
	}

	for _, tpn := range testplans {
		t.Run(tpn, func(t *testing.T) {
			testplan, err := LoadTestPlanFile(tpn)
			if err != nil {
				t.Fatalf("LoadTestPlanFile(%q) = error %v", tpn, err)
			}

			// Example.no.testplan plays Example too.
			script, _, _ := strings.Cut(filepath.Base(tpn), ".")

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if *traceOutput {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			e := &Engine{
				Display:  testplan,
				BGM:      testplan.BGM(),
				Voice:    testplan.Voice(),
				Source:   DirSource{Dir: "testdata"},
				Logger:   logger,
				TraceLog: *traceOutput,
			}
			if err := e.Load(script); err != nil {
				t.Fatalf("Load(%q) = %v", script, err)
			}
			if err := testplan.Play(e); err != nil {
				t.Errorf("testplan.Play() = %v", err)
			}
		})
	}
}

func TestReadTestPlan(t *testing.T) {
	const plan = `
# comment
background: room.png
line: A: Hello: again
option: Yes
select: 1
stop
line: never read
`
	tp, err := ReadTestPlan(strings.NewReader(plan))
	if err != nil {
		t.Fatalf("ReadTestPlan() = %v", err)
	}
	want := []TestStep{
		{Type: "background", Contents: "room.png"},
		{Type: "line", Contents: "A: Hello: again"},
		{Type: "option", Contents: "Yes"},
		{Type: "select", Contents: "1"},
	}
	if diff := cmp.Diff(tp.Steps, want); diff != "" {
		t.Errorf("ReadTestPlan() steps diff (-got +want):\n%s", diff)
	}
}

func TestReadTestPlanMalformed(t *testing.T) {
	if _, err := ReadTestPlan(strings.NewReader("background room.png\n")); err == nil {
		t.Error("ReadTestPlan(malformed) = nil error, want error")
	}
}

func TestTestPlanMismatch(t *testing.T) {
	tp, err := ReadTestPlan(strings.NewReader("line: A: Hello\n"))
	if err != nil {
		t.Fatalf("ReadTestPlan() = %v", err)
	}
	e := &Engine{
		Display: tp,
		Source:  MapSource{"s": "A“Goodbye”"},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := e.Load("s"); err != nil {
		t.Fatalf("Load(s) = %v", err)
	}
	if err := tp.Play(e); err == nil {
		t.Error("tp.Play() = nil error, want a mismatch")
	}
}
