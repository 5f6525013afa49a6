package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nhle/modulesync/internal/model"
)

// CourseOptions selects the course to work on.
type CourseOptions struct {
	CourseID   int64
	CourseName string
}

// AddCourseArgs wires course selection flags on the provided command.
func AddCourseArgs(cmd *cobra.Command, o *CourseOptions) {
	cmd.Flags().Int64VarP(&o.CourseID, "course", "c", 0,
		"Specify the course id.")
	cmd.Flags().StringVar(&o.CourseName, "course-name", "",
		"Name shown in the header (defaults to the course id).")
	_ = cmd.MarkFlagRequired("course")
}

// Course returns the selected course.
func (o *CourseOptions) Course() (model.Course, error) {
	if o.CourseID <= 0 {
		return model.Course{}, errors.New("--course must be a positive course id")
	}
	name := o.CourseName
	if name == "" {
		name = model.Course{ID: o.CourseID}.ContextID()
	}
	return model.Course{ID: o.CourseID, Name: name}, nil
}
