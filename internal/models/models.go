package models

import (
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleInstructor || role == RoleStudent
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"unique;not null"          json:"name"`
	Description string `json:"description"`
}

type Course struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string   `gorm:"not null"                 json:"title"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	Price        float64  `json:"price"`
	ImageURL     string   `json:"image_url"`
	CategoryID   uint     `gorm:"index;not null"           json:"category_id"`
	Category     Category `json:"category"`
	InstructorID uint     `gorm:"index;not null"           json:"instructor_id"`
	Instructor   User     `json:"instructor"`
}

type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_course_student" json:"course_id"`
	Course    Course    `json:"course"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_course_student" json:"student_id"`
	Student   User      `json:"student"`
	CreatedAt time.Time `json:"created_at"`
}
