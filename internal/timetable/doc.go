// Package timetable extracts course offerings from tabular timetable pages.
//
// A timetable page has a department title in an h2 and one table whose rows are
// offerings. Rows are not independent: a row without a course code either
// starts a new section of the previous course (it has a section number) or adds
// another meeting time, room, or instructor to the previous row. Parsing is a
// left-to-right fold with one "last accepted offering" accumulator per page.
package timetable
