// Package setup bootstraps a machine: it makes sure the configs directory
// is a clone of the remote, lays out the .sync metadata, links the standard
// configs and writes a machine-local zshrc.local.
package setup
