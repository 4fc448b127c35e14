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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type walkedStep struct {
	Kind  stepKind
	Delay time.Duration
}

// walk runs a gesture's state machine without a pipeline, for at most
// limit steps.
func walk(m Move, limit int) []walkedStep {
	g := newGesture(m)
	steps := []walkedStep{{Kind: stepPose}}
	for k := stepPose; len(steps) < limit; {
		next, d, ok := g.next(k)
		if !ok {
			break
		}
		steps = append(steps, walkedStep{Kind: next, Delay: d})
		k = next
	}
	return steps
}

func TestGestureSteps(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want []walkedStep
	}{
		{
			name: "nod once",
			move: Move{Action: ActionNod, RepeatCount: 1},
			want: []walkedStep{
				{stepPose, 0},
				{stepRest, restDelay},
			},
		},
		{
			name: "nod twice",
			move: Move{Action: ActionNod, RepeatCount: 2},
			want: []walkedStep{
				{stepPose, 0},
				{stepRest, restDelay},
				{stepPose, repeatDelay},
				{stepRest, restDelay},
			},
		},
		{
			name: "slide right",
			move: Move{Action: ActionTo2, RepeatCount: 1},
			want: []walkedStep{
				{stepPose, 0},
				{stepArrive, restDelay},
			},
		},
		{
			name: "slide left after a feint",
			move: Move{Action: ActionTo0, RepeatCount: 2},
			want: []walkedStep{
				{stepPose, 0},
				{stepRest, restDelay},
				{stepPose, repeatDelay},
				{stepArrive, restDelay},
			},
		},
		{
			name: "back",
			move: Move{Action: ActionBack, RepeatCount: 1},
			want: []walkedStep{{stepPose, 0}},
		},
		{
			name: "back and clean",
			move: Move{Action: ActionBackAndClean, RepeatCount: 3},
			want: []walkedStep{{stepPose, 0}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := walk(test.move, 100)
			if diff := cmp.Diff(got, test.want); diff != "" {
				t.Errorf("steps diff (-got +want):\n%s", diff)
			}
		})
	}
}

func TestGestureRepeatsForever(t *testing.T) {
	got := walk(Move{Action: ActionNod, RepeatCount: 0}, 50)
	if len(got) != 50 {
		t.Fatalf("len(steps) = %d, want 50", len(got))
	}
	for i, s := range got {
		want := stepPose
		if i%2 == 1 {
			want = stepRest
		}
		if s.Kind != want {
			t.Errorf("steps[%d].Kind = %v, want %v", i, s.Kind, want)
		}
	}
}

func TestGestureOffsets(t *testing.T) {
	tests := []struct {
		action MoveAction
		dx, dy float64
	}{
		{ActionNod, 0, nodOffset},
		{ActionTo0, -slideOffset, 0},
		{ActionTo2, slideOffset, 0},
		{ActionBack, 0, 0},
	}
	for _, test := range tests {
		g := newGesture(Move{Action: test.action, RepeatCount: 1})
		if dx, dy := g.offset(stepPose); dx != test.dx || dy != test.dy {
			t.Errorf("offset(%s pose) = (%v, %v), want (%v, %v)", test.action, dx, dy, test.dx, test.dy)
		}
		if dx, dy := g.offset(stepRest); dx != 0 || dy != 0 {
			t.Errorf("offset(%s rest) = (%v, %v), want (0, 0)", test.action, dx, dy)
		}
	}
}

func TestGestureLooping(t *testing.T) {
	for n, want := range map[int]bool{-1: true, 0: true, 1: false, 2: true} {
		if got := newGesture(Move{RepeatCount: n}).looping(); got != want {
			t.Errorf("newGesture(RepeatCount %d).looping() = %t, want %t", n, got, want)
		}
	}
}
