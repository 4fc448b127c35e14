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

// Package audio plays Ogg Vorbis files through the system speaker. A
// Channel implements novel.AudioChannel and novel.LengthReporter.
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
)

// SampleRate is the rate the speaker runs at. Clips at other rates are
// resampled.
const SampleRate beep.SampleRate = 44100

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker initialises the speaker once per process.
func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SampleRate, SampleRate.N(time.Second/10))
	})
	return speakerErr
}

// Channel plays one clip at a time. Starting a clip stops the previous one.
// The zero value is ready to use.
type Channel struct {
	mu     sync.Mutex
	volume float64
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	stream beep.StreamSeekCloser
}

// PlayLoop plays the file at path repeatedly until stopped.
func (c *Channel) PlayLoop(path string, volume float64) error {
	return c.play(path, volume, true)
}

// PlayOnce plays the file at path once.
func (c *Channel) PlayOnce(path string, volume float64) error {
	return c.play(path, volume, false)
}

func (c *Channel) play(path string, volume float64, loop bool) error {
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("initialising speaker: %w", err)
	}
	stream, format, err := decode(path)
	if err != nil {
		return err
	}

	var s beep.Streamer = stream
	if loop {
		s = beep.Loop(-1, stream)
	}
	if format.SampleRate != SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, SampleRate, s)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.volume = volume
	base, silent := gain(volume)
	c.vol = &effects.Volume{Streamer: s, Base: 2, Volume: base, Silent: silent}
	c.ctrl = &beep.Ctrl{Streamer: c.vol}
	c.stream = stream
	speaker.Play(c.ctrl)
	return nil
}

// Stop stops the current clip, if any.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Channel) stopLocked() {
	if c.ctrl != nil {
		// Starve the streamer; the speaker drops it on the next buffer.
		speaker.Lock()
		c.ctrl.Streamer = nil
		speaker.Unlock()
		c.ctrl, c.vol = nil, nil
	}
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
}

// SetVolume changes the volume of the current and later clips.
func (c *Channel) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = volume
	if c.vol == nil {
		return
	}
	base, silent := gain(volume)
	speaker.Lock()
	c.vol.Volume = base
	c.vol.Silent = silent
	speaker.Unlock()
}

// Volume returns the last volume set.
func (c *Channel) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Length reports how long the file at path plays for.
func (c *Channel) Length(path string) (time.Duration, error) {
	stream, format, err := decode(path)
	if err != nil {
		return 0, err
	}
	defer stream.Close()
	return format.SampleRate.D(stream.Len()), nil
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("opening audio: %w", err)
	}
	stream, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return stream, format, nil
}

// gain converts a linear 0-1 volume to an effects.Volume exponent in base 2.
func gain(volume float64) (exp float64, silent bool) {
	if volume <= 0 {
		return 0, true
	}
	if volume > 1 {
		volume = 1
	}
	return math.Log2(volume), false
}
