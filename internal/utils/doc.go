// Package utils hosts shared infrastructure for the telescope CLI: the Viper
// configuration loader, the zap logger factory, and the accessor for values
// carried through command contexts.
package utils
