package lms

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/models"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func (h *DashboardHandler) View(c echo.Context) error {
	var totalUsers, totalCourses, totalEnrollments int64
	if err := h.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Course{}).Count(&totalCourses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Enrollment{}).Count(&totalEnrollments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	roleWise := echo.Map{}
	for _, role := range []string{models.RoleAdmin, models.RoleInstructor, models.RoleStudent} {
		var n int64
		if err := h.DB.Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		roleWise[role] = n
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_users":       totalUsers,
		"total_courses":     totalCourses,
		"total_enrollments": totalEnrollments,
		"role_wise_users":   roleWise,
	})
}
