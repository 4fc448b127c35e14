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

// Settings are the user-controlled values the engine reads from the
// display.
type Settings struct {
	// Volumes on a 0-100 scale. The effective volume of a channel is
	// main*channel/10000.
	MainVolume  float64
	BgmVolume   float64
	VoiceVolume float64

	// TextSpeed is the time between reveal steps. Zero shows lines at once.
	TextSpeed time.Duration

	// AutoDelay is added to every auto-play wait.
	AutoDelay time.Duration

	// WaitForVoice makes auto-play wait out voice clips.
	WaitForVoice bool

	Fullscreen bool
}

// FigureImage is everything needed to draw a figure in a slot.
type FigureImage struct {
	State FigureState

	BodyPath string
	FacePath string

	// Face position relative to the body, and body scale, from the figure
	// tables. Zero when the character has no table entry.
	FaceX, FaceY float64
	Scale        float64
}

// Display is the presentation surface. All methods are called from the
// engine's goroutine.
type Display interface {
	// SetBackground shows the background image at path.
	SetBackground(path string) error

	// SetSpeaker sets the name shown with the dialogue.
	SetSpeaker(name string)

	// SetDialogue shows dialogue text split into up to three panes.
	SetDialogue(panes [MaxSegments]string)

	// SetFigure shows a figure in a slot.
	SetFigure(key SlotKey, img FigureImage) error

	// ClearFigure empties a slot.
	ClearFigure(key SlotKey)

	// ClearAllFigures empties every slot and resets their offsets.
	ClearAllFigures()

	// SetFigureOffset displaces a slot's figure. dx and dy are fractions
	// of the container width and height.
	SetFigureOffset(key SlotKey, dx, dy float64)

	// SetChoices shows choice options. An empty list hides them.
	SetChoices(prompt string, options []string)

	// SetBacklog shows a window of dialogue history.
	SetBacklog(entries []BacklogEntry)

	// SetSaveSlots shows the save slots.
	SetSaveSlots(slots []SaveRecord)

	// Settings returns the current user settings.
	Settings() Settings
}

// AudioChannel plays one stream of audio at a time. Volumes are 0-1.
type AudioChannel interface {
	PlayLoop(path string, volume float64) error
	PlayOnce(path string, volume float64) error
	Stop()
	SetVolume(volume float64)
}

// LengthReporter is implemented by audio channels that can measure a clip
// without playing it.
type LengthReporter interface {
	Length(path string) (time.Duration, error)
}

// ScriptSource provides script text by name.
type ScriptSource interface {
	ReadScript(name string) (string, error)
}
