// Package api serves the stored courses and timetable offerings as JSON.
package api
