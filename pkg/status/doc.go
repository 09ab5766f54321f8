// Package status gathers a read-only view of the machine, the working copy
// and its remote, and renders it as a panel or as JSON/YAML.
package status
