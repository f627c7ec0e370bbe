// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors implements verieasy's user-facing error taxonomy: every
// error that can reach a CLI boundary is a UserError carrying a title, a
// detail, and an actionable suggestion, tagged with a category so FatalError
// and Format can render it consistently.
package errors

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kraklabs/verieasy/internal/ui"
)

// Category tags a UserError with the taxonomy bucket it belongs to.
type Category string

const (
	CategoryInput      Category = "input"
	CategoryConfig     Category = "config"
	CategoryInternal   Category = "internal"
	CategoryDatabase   Category = "database"
	CategoryNetwork    Category = "network"
	CategoryPermission Category = "permission"
)

// UserError is the single error type that reaches a CLI boundary.
type UserError struct {
	Category   Category
	Title      string
	Detail     string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// jsonError is UserError's wire shape for --json output.
type jsonError struct {
	Category   Category `json:"category"`
	Title      string   `json:"title"`
	Detail     string   `json:"detail"`
	Suggestion string   `json:"suggestion"`
	Cause      string   `json:"cause,omitempty"`
}

// Format renders e either as a JSON object (asJSON) or as colored,
// multi-line human text.
func (e *UserError) Format(asJSON bool) string {
	if asJSON {
		je := jsonError{
			Category:   e.Category,
			Title:      e.Title,
			Detail:     e.Detail,
			Suggestion: e.Suggestion,
		}
		if e.Err != nil {
			je.Cause = e.Err.Error()
		}
		data, err := json.Marshal(je)
		if err != nil {
			return e.Error()
		}
		return string(data)
	}

	out := ui.Label(string(e.Category)+":") + " " + e.Title + "\n"
	out += "  " + ui.DimText(e.Detail) + "\n"
	if e.Err != nil {
		out += "  " + ui.DimText(e.Err.Error()) + "\n"
	}
	if e.Suggestion != "" {
		out += "  " + e.Suggestion
	}
	return out
}

func newError(cat Category, title, detail, suggestion string, err error) *UserError {
	return &UserError{Category: cat, Title: title, Detail: detail, Suggestion: suggestion, Err: err}
}

// NewInputError reports a malformed or missing user-supplied argument: no
// underlying error, since the cause is the input itself.
func NewInputError(title, detail, suggestion string) *UserError {
	return newError(CategoryInput, title, detail, suggestion, nil)
}

// NewConfigError reports a workflow.toml problem.
func NewConfigError(title, detail, suggestion string, err error) *UserError {
	return newError(CategoryConfig, title, detail, suggestion, err)
}

// NewInternalError reports an unexpected failure that is not the user's fault.
func NewInternalError(title, detail, suggestion string, err error) *UserError {
	return newError(CategoryInternal, title, detail, suggestion, err)
}

// NewDatabaseError reports a failure from a component's backing store or
// subprocess state (e.g. a kani/alive2 cache).
func NewDatabaseError(title, detail, suggestion string, err error) *UserError {
	return newError(CategoryDatabase, title, detail, suggestion, err)
}

// NewNetworkError reports a failure reaching a network resource (the
// --metrics-addr listener, a remote harness fetch).
func NewNetworkError(title, detail, suggestion string, err error) *UserError {
	return newError(CategoryNetwork, title, detail, suggestion, err)
}

// NewPermissionError reports a filesystem permission failure.
func NewPermissionError(title, detail, suggestion string, err error) *UserError {
	return newError(CategoryPermission, title, detail, suggestion, err)
}

// FatalError prints err (wrapping it as an internal error first if it is not
// already a *UserError) and exits the process with status 1.
func FatalError(err error, asJSON bool) {
	ue, ok := err.(*UserError)
	if !ok {
		ue = NewInternalError("Unexpected error", err.Error(), "Please report this issue if it persists", err)
	}
	fmt.Fprintln(os.Stderr, ue.Format(asJSON))
	os.Exit(1)
}
