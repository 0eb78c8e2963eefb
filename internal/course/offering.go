package course

import "fmt"

// Column names of the timetable table that differ from the courses table.
const (
	FieldTerm                  = "term"
	FieldSection               = "section"
	FieldWaitlist              = "waitlist"
	FieldTime                  = "time"
	FieldLocation              = "location"
	FieldInstructor            = "instructor"
	FieldEnrollmentCode        = "EnrollmentCode"
	FieldEnrollmentControlLink = "EnrollmentControlLink"
)

// TimetableTable is the table tabular records are stored in.
const TimetableTable = "timetable"

// OfferingColumns lists the timetable columns in schema order, which is also the
// left-to-right order of the cells in a timetable row.
var OfferingColumns = []string{
	FieldCode,
	FieldTerm,
	FieldName,
	FieldSection,
	FieldWaitlist,
	FieldTime,
	FieldLocation,
	FieldInstructor,
	FieldEnrollmentCode,
	FieldEnrollmentControlLink,
}

// Offering is one section of a course as listed on a timetable page.
// Empty strings are absent fields.
type Offering struct {
	Code                  string `json:"code" csv:"code"`
	Term                  string `json:"term,omitempty" csv:"term"`
	Name                  string `json:"name,omitempty" csv:"name"`
	Section               string `json:"section,omitempty" csv:"section"`
	Waitlist              string `json:"waitlist,omitempty" csv:"waitlist"`
	Time                  string `json:"time,omitempty" csv:"time"`
	Location              string `json:"location,omitempty" csv:"location"`
	Instructor            string `json:"instructor,omitempty" csv:"instructor"`
	EnrollmentCode        string `json:"EnrollmentCode,omitempty" csv:"EnrollmentCode"`
	EnrollmentControlLink string `json:"EnrollmentControlLink,omitempty" csv:"EnrollmentControlLink"`
}

// Table implements Record.
func (o *Offering) Table() string { return TimetableTable }

// Key implements Record.
func (o *Offering) Key() string { return o.Code }

// Fields implements Record.
func (o *Offering) Fields() []Field {
	fields := make([]Field, 0, len(OfferingColumns)-1)
	fields = appendPresent(fields, FieldTerm, o.Term)
	fields = appendPresent(fields, FieldName, o.Name)
	fields = appendPresent(fields, FieldSection, o.Section)
	fields = appendPresent(fields, FieldWaitlist, o.Waitlist)
	fields = appendPresent(fields, FieldTime, o.Time)
	fields = appendPresent(fields, FieldLocation, o.Location)
	fields = appendPresent(fields, FieldInstructor, o.Instructor)
	fields = appendPresent(fields, FieldEnrollmentCode, o.EnrollmentCode)
	fields = appendPresent(fields, FieldEnrollmentControlLink, o.EnrollmentControlLink)
	return fields
}

// Validate implements Record. An offering only needs a code.
func (o *Offering) Validate() error {
	if o.Code == "" {
		return incomplete(FieldCode)
	}
	return nil
}

// Get returns a value by column name.
func (o *Offering) Get(name string) string {
	switch name {
	case FieldCode:
		return o.Code
	case FieldTerm:
		return o.Term
	case FieldName:
		return o.Name
	case FieldSection:
		return o.Section
	case FieldWaitlist:
		return o.Waitlist
	case FieldTime:
		return o.Time
	case FieldLocation:
		return o.Location
	case FieldInstructor:
		return o.Instructor
	case FieldEnrollmentCode:
		return o.EnrollmentCode
	case FieldEnrollmentControlLink:
		return o.EnrollmentControlLink
	}
	return ""
}

// Set assigns a value by column name.
func (o *Offering) Set(name, value string) error {
	switch name {
	case FieldCode:
		o.Code = value
	case FieldTerm:
		o.Term = value
	case FieldName:
		o.Name = value
	case FieldSection:
		o.Section = value
	case FieldWaitlist:
		o.Waitlist = value
	case FieldTime:
		o.Time = value
	case FieldLocation:
		o.Location = value
	case FieldInstructor:
		o.Instructor = value
	case FieldEnrollmentCode:
		o.EnrollmentCode = value
	case FieldEnrollmentControlLink:
		o.EnrollmentControlLink = value
	default:
		return fmt.Errorf("unknown offering field: %q", name)
	}
	return nil
}

func (o *Offering) String() string {
	return fmt.Sprintf("%s %s %s", o.Code, o.Term, o.Section)
}
