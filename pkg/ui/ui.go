// Package ui decides how csync talks to the terminal: which output format
// to use and how to ask the user questions.
package ui
