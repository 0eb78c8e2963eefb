// Package course defines the records extracted from archived university pages.
//
// Two page families produce two record variants: a Course comes from a narrative
// calendar page (code, title, description, requisites), an Offering comes from a
// row of a tabular timetable page (term, section, time, room, instructor). Both
// are keyed by the course code and implement Record, which is what the storage
// layer persists.
package course
