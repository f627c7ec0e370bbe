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

// Package ui renders the verieasy CLI's status lines and report headers,
// color-gated by terminal detection and NO_COLOR.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgWhite, color.Bold)
	subHeadColor = color.New(color.FgHiWhite)
	labelColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
	countColor   = color.New(color.FgGreen)
)

// InitColors decides whether color.NoColor should be forced on, honoring an
// explicit --no-color flag, the NO_COLOR convention, and whether stdout is a
// terminal at all.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Success prints a green confirmation line.
func Success(msg string) {
	successColor.Fprintln(os.Stdout, msg)
}

// Successf is Success with formatting.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Warning prints a yellow warning line.
func Warning(msg string) {
	warningColor.Fprintln(os.Stdout, msg)
}

// Warningf is Warning with formatting.
func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

// Info prints a cyan informational line.
func Info(msg string) {
	infoColor.Fprintln(os.Stdout, msg)
}

// Infof is Info with formatting.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Header prints a bold section banner.
func Header(title string) {
	fmt.Println()
	headerColor.Println(title)
}

// SubHeader prints a lighter, nested section banner.
func SubHeader(title string) {
	subHeadColor.Println(title)
}

// Label returns s in the label color for inline use with fmt.Printf; it adds
// no suffix, so callers supply any trailing colon themselves.
func Label(s string) string {
	return labelColor.Sprint(s)
}

// DimText returns s dimmed, for secondary detail on a line.
func DimText(s string) string {
	return dimColor.Sprint(s)
}

// CountText returns n rendered in green, for report counts (verified/tested/
// failed tallies).
func CountText(n int) string {
	return countColor.Sprintf("%d", n)
}
