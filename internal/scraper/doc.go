// Package scraper downloads archived course pages over HTTP.
//
// Pages are saved byte-for-byte so that charset detection happens at parse
// time, the same way it does for pages read from disk.
package scraper
