package course

import "fmt"

// Column names of the courses table.
const (
	FieldCode                          = "code"
	FieldName                          = "name"
	FieldDesc                          = "desc"
	FieldPrerequisite                  = "Prerequisite"
	FieldCorequisite                   = "Corequisite"
	FieldRecommendedPreparation        = "RecommendedPreparation"
	FieldDistributionRequirementStatus = "DistributionRequirementStatus"
	FieldBreadthRequirement            = "BreadthRequirement"
	FieldExclusion                     = "Exclusion"
	FieldLecTimes                      = "lectimes"
)

// CoursesTable is the table narrative records are stored in.
const CoursesTable = "courses"

// CourseColumns lists the courses table columns in schema order.
var CourseColumns = []string{
	FieldCode,
	FieldName,
	FieldDesc,
	FieldPrerequisite,
	FieldCorequisite,
	FieldRecommendedPreparation,
	FieldDistributionRequirementStatus,
	FieldBreadthRequirement,
	FieldExclusion,
	FieldLecTimes,
}

// Course is one entry of a narrative calendar page.
// Empty strings are absent fields.
type Course struct {
	Code                          string `json:"code" csv:"code"`
	Name                          string `json:"name,omitempty" csv:"name"`
	Desc                          string `json:"desc,omitempty" csv:"desc"`
	Prerequisite                  string `json:"Prerequisite,omitempty" csv:"Prerequisite"`
	Corequisite                   string `json:"Corequisite,omitempty" csv:"Corequisite"`
	RecommendedPreparation        string `json:"RecommendedPreparation,omitempty" csv:"RecommendedPreparation"`
	DistributionRequirementStatus string `json:"DistributionRequirementStatus,omitempty" csv:"DistributionRequirementStatus"`
	BreadthRequirement            string `json:"BreadthRequirement,omitempty" csv:"BreadthRequirement"`
	Exclusion                     string `json:"Exclusion,omitempty" csv:"Exclusion"`
	LecTimes                      string `json:"lectimes,omitempty" csv:"lectimes"`
}

// Table implements Record.
func (c *Course) Table() string { return CoursesTable }

// Key implements Record.
func (c *Course) Key() string { return c.Code }

// Fields implements Record.
func (c *Course) Fields() []Field {
	fields := make([]Field, 0, len(CourseColumns)-1)
	fields = appendPresent(fields, FieldName, c.Name)
	fields = appendPresent(fields, FieldDesc, c.Desc)
	fields = appendPresent(fields, FieldPrerequisite, c.Prerequisite)
	fields = appendPresent(fields, FieldCorequisite, c.Corequisite)
	fields = appendPresent(fields, FieldRecommendedPreparation, c.RecommendedPreparation)
	fields = appendPresent(fields, FieldDistributionRequirementStatus, c.DistributionRequirementStatus)
	fields = appendPresent(fields, FieldBreadthRequirement, c.BreadthRequirement)
	fields = appendPresent(fields, FieldExclusion, c.Exclusion)
	fields = appendPresent(fields, FieldLecTimes, c.LecTimes)
	return fields
}

// Validate implements Record. A course needs both a code and a name.
func (c *Course) Validate() error {
	switch {
	case c.Code == "" && c.Name == "":
		return incomplete("code and name")
	case c.Code == "":
		return incomplete(FieldCode)
	case c.Name == "":
		return incomplete(FieldName)
	}
	return nil
}

// Get returns a value by column name, or "" for unknown names.
func (c *Course) Get(name string) string {
	switch name {
	case FieldCode:
		return c.Code
	case FieldName:
		return c.Name
	case FieldDesc:
		return c.Desc
	case FieldPrerequisite:
		return c.Prerequisite
	case FieldCorequisite:
		return c.Corequisite
	case FieldRecommendedPreparation:
		return c.RecommendedPreparation
	case FieldDistributionRequirementStatus:
		return c.DistributionRequirementStatus
	case FieldBreadthRequirement:
		return c.BreadthRequirement
	case FieldExclusion:
		return c.Exclusion
	case FieldLecTimes:
		return c.LecTimes
	}
	return ""
}

// Set assigns a value by column name.
func (c *Course) Set(name, value string) error {
	switch name {
	case FieldCode:
		c.Code = value
	case FieldName:
		c.Name = value
	case FieldDesc:
		c.Desc = value
	case FieldPrerequisite:
		c.Prerequisite = value
	case FieldCorequisite:
		c.Corequisite = value
	case FieldRecommendedPreparation:
		c.RecommendedPreparation = value
	case FieldDistributionRequirementStatus:
		c.DistributionRequirementStatus = value
	case FieldBreadthRequirement:
		c.BreadthRequirement = value
	case FieldExclusion:
		c.Exclusion = value
	case FieldLecTimes:
		c.LecTimes = value
	default:
		return fmt.Errorf("unknown course field: %q", name)
	}
	return nil
}

func (c *Course) String() string {
	return fmt.Sprintf("%s %s", c.Code, c.Name)
}
