// Package output renders atomctl results as a table, JSON or YAML.
package output
