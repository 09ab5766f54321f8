// Package datastore persists the small per-machine sync metadata files kept
// in the .sync directory: the machine id, the last sync timestamp and the
// prompt status token.
package datastore
