// Package cli implements the uoft-courses command-line interface.
//
// The calendar and timetable commands parse saved pages, one file or a whole
// directory, and print the records or write them to the database. links and
// download build and fetch the page inventory; export and serve read the
// database back out.
package cli
