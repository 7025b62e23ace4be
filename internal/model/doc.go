// Package model holds the typed records shared by every build stage:
// resolved content nodes and the satellite records other stages attach to
// them (assets, conversions, accessibility results).
package model
