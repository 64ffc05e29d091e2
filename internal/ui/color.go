// Package ui holds terminal colour and table helpers
package ui

import (
	"github.com/pterm/pterm"
)

var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Yellow(a any) string {
	if DarkTheme {
		return pterm.LightYellow(a)
	}

	return pterm.Yellow(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

func Cyan(a any) string {
	if DarkTheme {
		return pterm.LightCyan(a)
	}

	return pterm.Cyan(a)
}

// Level colours a graded label: green for the lowest grade, red for the
// highest and yellow in between.
func Level(label string, grade, top int) string {
	switch {
	case grade <= 0:
		return Green(label)
	case grade >= top:
		return Red(label)
	default:
		return Yellow(label)
	}
}
