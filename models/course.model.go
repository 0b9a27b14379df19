package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MediaRef points at an object stored in the media bucket.
type MediaRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// Lesson is embedded in exactly one course. It has no table of its own:
// the owning course serializes its full lesson list as one JSON column, so
// every lesson mutation rewrites the whole ordered list.
type Lesson struct {
	ID          string    `json:"id"` // server generated uuid
	Title       string    `json:"title"`
	Slug        string    `json:"slug"` // derived from title, not globally unique
	Content     string    `json:"content"`
	Video       *MediaRef `json:"video,omitempty"`
	FreePreview bool      `json:"free_preview"`
}

// Paid and Price carry no column defaults: gorm drops zero-value fields
// that have a default tag on insert, which would turn every free course
// into a paid one.
type Course struct {
	gorm.Model
	Name         string                       `json:"name" gorm:"not null"`
	Slug         string                       `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string                       `json:"description"`
	Category     string                       `json:"category"`
	Price        float64                      `json:"price"` // meaningful only when Paid
	Paid         bool                         `json:"paid"`
	Published    bool                         `json:"published" gorm:"default:false"`
	Image        datatypes.JSONType[MediaRef] `json:"image"`
	InstructorID uint                         `json:"instructor_id" gorm:"index;not null"`
	Instructor   User                         `json:"instructor" gorm:"foreignKey:InstructorID"`
	Lessons      datatypes.JSONSlice[Lesson]  `json:"lessons"`
}

// InstructorProjection is the minimal owner view exposed on course listings;
// the instructor's full record never leaves the API.
type InstructorProjection struct {
	ID   uint   `json:"_id"`
	Name string `json:"name"`
}

// OwnedBy reports whether userID owns this course. Every mutating course
// operation checks this before touching anything.
func (c *Course) OwnedBy(userID uint) bool {
	return c.InstructorID == userID
}

// AddLesson appends a lesson to the ordered list.
func (c *Course) AddLesson(l Lesson) {
	c.Lessons = append(c.Lessons, l)
}

// UpdateLesson replaces the lesson with the same id in place. Returns false
// when no lesson matches.
func (c *Course) UpdateLesson(l Lesson) bool {
	for i := range c.Lessons {
		if c.Lessons[i].ID == l.ID {
			c.Lessons[i] = l
			return true
		}
	}
	return false
}

// RemoveLesson deletes the lesson with the given id, keeping order of the
// remaining lessons. Returns the removed lesson and whether it was found.
func (c *Course) RemoveLesson(id string) (Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].ID == id {
			removed := c.Lessons[i]
			c.Lessons = append(c.Lessons[:i], c.Lessons[i+1:]...)
			return removed, true
		}
	}
	return Lesson{}, false
}
