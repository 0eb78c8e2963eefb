// Package batch runs a page parser over many saved pages.
//
// Each document is read, parsed, filtered for incomplete records and handed
// to an Emitter. A document that fails to parse is logged with its source and
// does not stop the run unless FailFast is set.
package batch
