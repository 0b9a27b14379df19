package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Roles a user can carry. Every account starts as a subscriber; the
// instructor role is added once Stripe onboarding completes.
const (
	RoleSubscriber = "Subscriber"
	RoleInstructor = "Instructor"
)

type User struct {
	gorm.Model
	Name              string                      `json:"name" gorm:"default:''"`
	Email             string                      `json:"email" gorm:"unique;not null"`
	Password          string                      `json:"-" gorm:"not null"`
	Picture           string                      `json:"picture" gorm:"default:'/avatar.png'"`
	Roles             datatypes.JSONSlice[string] `json:"role"`
	Courses           datatypes.JSONSlice[uint]   `json:"courses"` // entitlement set, only grows
	StripeAccountID   string                      `json:"stripe_account_id"`
	StripeSession     string                      `json:"-"` // pending checkout session id, one slot per user
	PasswordResetCode string                      `json:"-"`
}

// HasRole reports whether the role set contains role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddRole adds role to the role set. Adding a present role is a no-op.
func (u *User) AddRole(role string) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

// IsEntitled reports whether courseID is a member of the entitlement set.
func (u *User) IsEntitled(courseID uint) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// Grant adds courseID to the entitlement set. Duplicate grants are no-ops,
// so the enrollment workflow can retry freely.
func (u *User) Grant(courseID uint) {
	if !u.IsEntitled(courseID) {
		u.Courses = append(u.Courses, courseID)
	}
}
