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

// FakeDisplay implements Display with minimal, do-nothing methods. This is
// useful both for testing, and for satisfying the interface via embedding,
// e.g.:
//
//	type MyDisplay struct {
//	    FakeDisplay
//	}
//	// MyDisplay is only interested in dialogue.
//	func (m *MyDisplay) SetSpeaker(name string) { ... }
//	func (m *MyDisplay) SetDialogue(panes [MaxSegments]string) { ... }
//	// All the other Display methods provided by FakeDisplay.
type FakeDisplay struct{}

// SetBackground returns nil.
func (FakeDisplay) SetBackground(string) error { return nil }

// SetSpeaker does nothing.
func (FakeDisplay) SetSpeaker(string) {}

// SetDialogue does nothing.
func (FakeDisplay) SetDialogue([MaxSegments]string) {}

// SetFigure returns nil.
func (FakeDisplay) SetFigure(SlotKey, FigureImage) error { return nil }

// ClearFigure does nothing.
func (FakeDisplay) ClearFigure(SlotKey) {}

// ClearAllFigures does nothing.
func (FakeDisplay) ClearAllFigures() {}

// SetFigureOffset does nothing.
func (FakeDisplay) SetFigureOffset(SlotKey, float64, float64) {}

// SetChoices does nothing.
func (FakeDisplay) SetChoices(string, []string) {}

// SetBacklog does nothing.
func (FakeDisplay) SetBacklog([]BacklogEntry) {}

// SetSaveSlots does nothing.
func (FakeDisplay) SetSaveSlots([]SaveRecord) {}

// Settings returns full volume, text shown at once, no auto-play delay,
// and waiting for voices.
func (FakeDisplay) Settings() Settings {
	return Settings{
		MainVolume:   100,
		BgmVolume:    100,
		VoiceVolume:  100,
		WaitForVoice: true,
	}
}

// FakeAudio implements AudioChannel silently.
type FakeAudio struct{}

// PlayLoop returns nil.
func (FakeAudio) PlayLoop(string, float64) error { return nil }

// PlayOnce returns nil.
func (FakeAudio) PlayOnce(string, float64) error { return nil }

// Stop does nothing.
func (FakeAudio) Stop() {}

// SetVolume does nothing.
func (FakeAudio) SetVolume(float64) {}
