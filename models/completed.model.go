package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Completed tracks which lessons of a course a user has finished.
// At most one row exists per (user, course) pair.
type Completed struct {
	gorm.Model
	UserID   uint                        `json:"user_id" gorm:"uniqueIndex:idx_completed_user_course;not null"`
	CourseID uint                        `json:"course_id" gorm:"uniqueIndex:idx_completed_user_course;not null"`
	Lessons  datatypes.JSONSlice[string] `json:"lessons"` // completed lesson ids
}

// HasLesson reports whether lessonID is already marked complete.
func (cc *Completed) HasLesson(lessonID string) bool {
	for _, id := range cc.Lessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// MarkComplete adds lessonID to the set. Returns false when it was already
// present.
func (cc *Completed) MarkComplete(lessonID string) bool {
	if cc.HasLesson(lessonID) {
		return false
	}
	cc.Lessons = append(cc.Lessons, lessonID)
	return true
}

// MarkIncomplete removes lessonID from the set. Removing an absent lesson is
// a no-op.
func (cc *Completed) MarkIncomplete(lessonID string) bool {
	for i, id := range cc.Lessons {
		if id == lessonID {
			cc.Lessons = append(cc.Lessons[:i], cc.Lessons[i+1:]...)
			return true
		}
	}
	return false
}
