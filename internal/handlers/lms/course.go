package lms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/logging"
	"github.com/mdalbakiakon/lms-backend/internal/models"
	"github.com/mdalbakiakon/lms-backend/internal/mykafka"
	"github.com/mdalbakiakon/lms-backend/internal/service/search"
	"github.com/mdalbakiakon/lms-backend/internal/util"
)

type CourseHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *CourseHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Course{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var courses []models.Course
	if err := h.DB.Preload("Category").Preload("Instructor").
		Order("id ASC").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": courses,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// Create adds a course owned by the authenticated instructor. The
// instructor always comes from the identity, never from the body.
func (h *CourseHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "course_create")

	instructorID, ok := identity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Duration    string  `json:"duration"`
		Price       float64 `json:"price"`
		CategoryID  uint    `json:"category_id"`
		ImageURL    string  `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fieldErrs := echo.Map{}
	if req.Title == "" {
		fieldErrs["title"] = "this field is required"
	}
	if req.CategoryID == 0 {
		fieldErrs["category_id"] = "this field is required"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	var category models.Category
	if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"category_id": "category not found"})
	}

	course := models.Course{
		Title:        req.Title,
		Description:  req.Description,
		Duration:     req.Duration,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		CategoryID:   req.CategoryID,
		InstructorID: instructorID,
	}
	if err := h.DB.Create(&course).Error; err != nil {
		l.Error("course_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.Preload("Category").Preload("Instructor").First(&course, course.ID).Error; err != nil {
		l.Error("course_reload_failed", "error", err)
	}

	if h.ES != nil {
		go func(course models.Course) {
			idxCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := search.IndexCourse(idxCtx, h.ES, h.Index, course); err != nil {
				l.Error("course_index_failed", "courseID", course.ID, "error", err)
			}
		}(course)
	}

	publish(c, h.Producer, "lms_events", fmt.Sprint(course.ID), map[string]interface{}{
		"type":         "course_created",
		"courseID":     course.ID,
		"title":        course.Title,
		"instructorID": instructorID,
	})

	l.Info("course_created", "courseID", course.ID, "instructorID", instructorID)
	return c.JSON(http.StatusCreated, course)
}
