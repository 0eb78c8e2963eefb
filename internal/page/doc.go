// Package page loads archived department pages and isolates the part of them that
// lists courses.
//
// Pages are decoded to UTF-8 (archived copies are often windows-1252), parsed
// with goquery, and normalized so that typographic quotes and non-breaking
// spaces compare equal to their plain forms. The region between a department's
// "... Courses" heading and the page footer is cut out of the serialized
// document by string containment, which is why boundary elements and the
// document are always rendered by the same html.Render call path.
package page
