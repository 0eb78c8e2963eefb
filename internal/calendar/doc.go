// Package calendar extracts courses from narrative calendar pages.
//
// A calendar page describes one department: some front matter, a
// "{Department} Courses" heading, then one entry per course, each introduced by
// an empty named anchor such as <a name="CHM138H1"></a>. The entry's title line
// carries the code, the title, and an optional bracketed hours suffix; requisites
// follow as "Label: value<br>" lines.
package calendar
