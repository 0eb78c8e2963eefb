// Package inventory builds the list of department pages linked from an index
// page, stores it as YAML, and downloads the pages it names.
package inventory
