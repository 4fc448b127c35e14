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

import "fmt"

type engineError string

func (e engineError) Error() string { return string(e) }

// Error categories. Every error returned by this package matches one of
// these with errors.Is.
const (
	// ErrFile is for failures reading scripts, assets, or saves.
	ErrFile = engineError("file error")

	// ErrParse is for any failure compiling a script.
	ErrParse = engineError("parse error")

	// ErrConfig is for malformed settings.
	ErrConfig = engineError("config error")

	// ErrUI is for failures of the display, and requests the display made
	// that could not be honoured.
	ErrUI = engineError("ui error")

	// ErrAuto is for a background scheduler that could not deliver to the
	// engine.
	ErrAuto = engineError("auto error")
)

// ErrScriptEnd is returned by Advance when there are no blocks left.
const ErrScriptEnd = engineError("end of script")

// InvalidCommandErr is returned for a directive that is unknown or whose
// arguments are malformed.
type InvalidCommandErr struct {
	Line    int
	Content string
}

func (e InvalidCommandErr) Error() string {
	return fmt.Sprintf("line %d: invalid command %q", e.Line, e.Content)
}

// Is reports whether target is ErrParse.
func (InvalidCommandErr) Is(target error) bool { return target == ErrParse }

// MalformedDialogueErr is returned for a dialogue line missing its closing
// quotation mark.
type MalformedDialogueErr struct {
	Line    int
	Content string
}

func (e MalformedDialogueErr) Error() string {
	return fmt.Sprintf("line %d: malformed dialogue %q", e.Line, e.Content)
}

// Is reports whether target is ErrParse.
func (MalformedDialogueErr) Is(target error) bool { return target == ErrParse }

// UnknownLineErr is returned for a line that is not a directive, a version,
// a comment, or dialogue.
type UnknownLineErr struct {
	Line    int
	Content string
}

func (e UnknownLineErr) Error() string {
	return fmt.Sprintf("line %d: unknown line %q", e.Line, e.Content)
}

// Is reports whether target is ErrParse.
func (UnknownLineErr) Is(target error) bool { return target == ErrParse }

// UnsupportedVersionErr is returned when a script declares a version other
// than SupportedVersion.
type UnsupportedVersionErr struct {
	Need   int
	Indeed string
}

func (e UnsupportedVersionErr) Error() string {
	return fmt.Sprintf("unsupported script version %q, need %d", e.Indeed, e.Need)
}

// Is reports whether target is ErrParse.
func (UnsupportedVersionErr) Is(target error) bool { return target == ErrParse }

// ChooseErr is returned for a malformed choose directive or choice line.
type ChooseErr struct {
	Line    int
	Content string
}

func (e ChooseErr) Error() string {
	return fmt.Sprintf("line %d: invalid choice %q", e.Line, e.Content)
}

// Is reports whether target is ErrParse.
func (ChooseErr) Is(target error) bool { return target == ErrParse }

// TooShortErr is returned when a directive has fewer pipe-delimited fields
// than it needs.
type TooShortErr struct {
	Line    int
	Content string
	Need    int
}

func (e TooShortErr) Error() string {
	return fmt.Sprintf("line %d: %q has too few fields, need %d", e.Line, e.Content, e.Need)
}

// Is reports whether target is ErrParse.
func (TooShortErr) Is(target error) bool { return target == ErrParse }

// UnknownLabelErr is returned when a jump names a label the destination
// script does not declare.
type UnknownLabelErr struct {
	Target Target
}

func (e UnknownLabelErr) Error() string {
	return fmt.Sprintf("unknown label %q in script %q", e.Target.Label, e.Target.Script)
}

// Is reports whether target is ErrParse.
func (UnknownLabelErr) Is(target error) bool { return target == ErrParse }

// UnknownChoiceErr is returned by Choose for text that is not one of the
// offered options.
type UnknownChoiceErr struct {
	Text string
}

func (e UnknownChoiceErr) Error() string {
	return fmt.Sprintf("no choice %q", e.Text)
}

// Is reports whether target is ErrUI.
func (UnknownChoiceErr) Is(target error) bool { return target == ErrUI }
