package ingest

// Entity types known to the platform's batch importers.
const (
	EntityCourse     = "course"
	EntityInstructor = "instructor"
)

const (
	COURSE_COLLECTION     = "catalog.courses"
	INSTRUCTOR_COLLECTION = "catalog.instructors"
)

const CourseTypeAcademic = "academic"

// CourseSchema configures the course batch importer: column aliases seen in
// departmental CSV templates, the rule set and the (title, instructor)
// natural key.
func CourseSchema() *EntitySchema {
	return &EntitySchema{
		Name:       EntityCourse,
		Collection: COURSE_COLLECTION,
		LabelField: "title",
		KeyFields:  []string{"title", "instructor"},
		Fields: []FieldSpec{
			{Name: "title", Aliases: []string{"course title", "course name", "name"}},
			{Name: "description", Aliases: []string{"course description", "details"}},
			{Name: "instructor", Aliases: []string{"instructor name", "faculty", "taught by"}},
			{Name: "content", Aliases: []string{"course content", "topics", "syllabus"}, Kind: KindList},
			{Name: "duration", Aliases: []string{"course duration", "length"}},
			{Name: "courseType", Aliases: []string{"course type", "type", "category"}},
			{Name: "courseSegment", Aliases: []string{"course segment", "segment", "segments"}, Kind: KindList},
			{Name: "department", Aliases: []string{"dept", "department name"}},
			{Name: "startDate", Aliases: []string{"start date", "starts on"}, Kind: KindDate},
			{Name: "language", Aliases: []string{"medium"}, Default: "english"},
		},
		Rules: []Rule{
			Required("title"),
			Required("description"),
			Required("instructor"),
			Required("content"),
			Required("duration"),
			Required("courseType"),
			Required("courseSegment"),
			RequiredWhen("department", "courseType", CourseTypeAcademic),
		},
	}
}

// InstructorSchema configures the instructor importers (file upload and
// manual entry share it). Natural key is (email, university).
func InstructorSchema() *EntitySchema {
	return &EntitySchema{
		Name:       EntityInstructor,
		Collection: INSTRUCTOR_COLLECTION,
		LabelField: "name",
		KeyFields:  []string{"email", "university"},
		Fields: []FieldSpec{
			{Name: "name", Aliases: []string{"instructor name", "full name"}},
			{Name: "email", Aliases: []string{"email address", "mail"}},
			{Name: "university", Aliases: []string{"organization", "institution"}},
			{Name: "department", Aliases: []string{"dept", "department name"}},
			{Name: "position", Aliases: []string{"designation", "role"}},
			{Name: "expertise", Aliases: []string{"areas of expertise", "specialization"}, Kind: KindList},
			{Name: "phone", Aliases: []string{"phone number", "contact"}},
			{Name: "joinedOn", Aliases: []string{"joined on", "joining date"}, Kind: KindDate},
		},
		Rules: []Rule{
			Required("name"),
			Required("email"),
			Required("university"),
			Required("department"),
			Required("position"),
		},
	}
}

func init() {
	if err := RegisterSchema(CourseSchema()); err != nil {
		panic(err)
	}
	if err := RegisterSchema(InstructorSchema()); err != nil {
		panic(err)
	}
}
