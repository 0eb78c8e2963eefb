// Package storage persists course and timetable records into a SQL table keyed
// by course code.
//
// Each record is written as an insert-or-ignore of its code followed by one
// update covering exactly the fields the record carries, so a later partial
// record never clears columns written by an earlier one. SQLite (the default,
// via modernc.org/sqlite) and MySQL are supported through a Dialect.
package storage
