// Package command defines the atomctl command line.
//
// Every command loads the configuration (flags over ATOMSTORE_ environment
// variables over the YAML file over defaults), opens the storage engine
// for the configured preset and works on atoms holding arbitrary JSON.
package command
