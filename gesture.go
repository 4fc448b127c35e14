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

import "time"

// Gesture timing and distances. Offsets are fractions of the figure
// container's width or height.
const (
	restDelay   = 150 * time.Millisecond
	repeatDelay = 301 * time.Millisecond

	slideOffset = 0.17
	nodOffset   = 1.0 / 40
)

type stepKind int

const (
	stepPose   stepKind = iota // take the gesture's pose
	stepRest                   // return to the rest position
	stepArrive                 // move the figure to its destination slot
)

func (k stepKind) String() string {
	switch k {
	case stepPose:
		return "pose"
	case stepRest:
		return "rest"
	case stepArrive:
		return "arrive"
	}
	return "?"
}

// gesture is the state of one Move being performed. Each applied step
// yields at most one follow-up step, so the whole gesture lives on a single
// pipeline queue, and clearing that queue cancels it.
type gesture struct {
	move Move

	// repeats left after the current pose; negative repeats forever.
	remaining int
}

func newGesture(m Move) *gesture {
	g := &gesture{move: m, remaining: m.RepeatCount - 1}
	if m.RepeatCount <= 0 {
		g.remaining = -1
	}
	return g
}

// looping reports whether the gesture belongs on the loop pipeline.
func (g *gesture) looping() bool { return g.move.RepeatCount != 1 }

// destination returns the slot a sliding gesture ends in.
func (g *gesture) destination() (string, bool) {
	switch g.move.Action {
	case ActionTo0:
		return "0", true
	case ActionTo2:
		return "2", true
	}
	return "", false
}

// offset returns the figure offset for a step.
func (g *gesture) offset(k stepKind) (dx, dy float64) {
	if k != stepPose {
		return 0, 0
	}
	switch g.move.Action {
	case ActionNod:
		return 0, nodOffset
	case ActionTo2:
		return slideOffset, 0
	case ActionTo0:
		return -slideOffset, 0
	}
	return 0, 0
}

// next returns the step to queue after step done has been applied, and
// its delay. ok is false when the gesture is complete.
func (g *gesture) next(done stepKind) (k stepKind, delay time.Duration, ok bool) {
	switch done {
	case stepPose:
		switch g.move.Action {
		case ActionBack, ActionBackAndClean:
			return 0, 0, false
		}
		if g.remaining == 0 {
			if _, slides := g.destination(); slides {
				return stepArrive, restDelay, true
			}
		}
		return stepRest, restDelay, true

	case stepRest:
		if g.remaining == 0 {
			return 0, 0, false
		}
		if g.remaining > 0 {
			g.remaining--
		}
		return stepPose, repeatDelay, true
	}
	return 0, 0, false
}

// gestureStep is a queued step of a gesture. It travels through a delay
// pipeline like any other command.
type gestureStep struct {
	g    *gesture
	kind stepKind
}

func (gestureStep) commandTag() {}
