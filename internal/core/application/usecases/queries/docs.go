// Package queries contains read operations. Queries return read models shaped
// for the HTTP surface and never change state.
package queries
