// Package cli assembles the telescope command-line application: the Cobra
// root command, configuration loading, structured logging, and the mapping
// from workflow failures to process exit statuses.
package cli
