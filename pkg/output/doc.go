// Package output defines the Reporter every component narrates through.
//
// Components never print directly. The CLI hands them a Console (styled,
// for people), wraps it in Quiet for background runs, and tests hand them a
// Recorder to assert on what was said.
package output
