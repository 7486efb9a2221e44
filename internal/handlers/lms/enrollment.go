package lms

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/logging"
	"github.com/mdalbakiakon/lms-backend/internal/models"
	"github.com/mdalbakiakon/lms-backend/internal/mykafka"
)

type EnrollmentHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// Create enrolls the authenticated student in a course.
func (h *EnrollmentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "enrollment_create")

	studentID, ok := identity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		CourseID uint `json:"course_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.CourseID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"course_id": "this field is required"})
	}

	var course models.Course
	if err := h.DB.First(&course, req.CourseID).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"course_id": "course not found"})
	}

	var existing models.Enrollment
	err := h.DB.Where("course_id = ? AND student_id = ?", req.CourseID, studentID).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"course_id": "already enrolled in this course"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("enrollment_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	enrollment := models.Enrollment{CourseID: req.CourseID, StudentID: studentID}
	if err := h.DB.Create(&enrollment).Error; err != nil {
		l.Error("enrollment_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "lms_events", fmt.Sprint(enrollment.ID), map[string]interface{}{
		"type":      "enrollment_created",
		"courseID":  enrollment.CourseID,
		"studentID": studentID,
	})

	l.Info("enrollment_created", "enrollmentID", enrollment.ID, "studentID", studentID)
	return c.JSON(http.StatusCreated, enrollment)
}
