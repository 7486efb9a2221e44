package lms

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Course{}, &models.Enrollment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func jsonContext(t *testing.T, e *echo.Echo, method, path string, payload interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	bodyBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func createUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@x.com", PasswordHash: "hash", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	cat := models.Category{Name: name, Description: "demo"}
	require.NoError(t, db.Create(&cat).Error)
	return cat
}

func TestCategoryCreateAndList(t *testing.T) {
	db := initTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/categories/create", map[string]string{
		"name":        "Software Engineering",
		"description": "Coding and systems.",
	})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate name is a field error.
	cDup, recDup := jsonContext(t, e, http.MethodPost, "/categories/create", map[string]string{
		"name": "Software Engineering",
	})
	require.NoError(t, h.Create(cDup))
	require.Equal(t, http.StatusBadRequest, recDup.Code)

	reqList := httptest.NewRequest(http.MethodGet, "/categories", nil)
	recList := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(reqList, recList)))
	require.Equal(t, http.StatusOK, recList.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(recList.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	require.Equal(t, "Software Engineering", categories[0].Name)
}

func TestCategoryCreateRequiresName(t *testing.T) {
	h := &CategoryHandler{DB: initTestDB(t)}
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/categories/create", map[string]string{"description": "x"})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseCreateTakesInstructorFromIdentity(t *testing.T) {
	db := initTestDB(t)
	h := &CourseHandler{DB: db}
	e := echo.New()

	instructor := createUser(t, db, "sarah_dev", models.RoleInstructor)
	cat := createCategory(t, db, "Software Engineering")

	c, rec := jsonContext(t, e, http.MethodPost, "/courses/create", map[string]interface{}{
		"title":         "Go for Backend Engineers",
		"description":   "From net/http to production services.",
		"duration":      "20 Hours",
		"price":         99.99,
		"category_id":   cat.ID,
		"instructor_id": 12345,
	})
	c.Set("userID", instructor.ID)
	c.Set("role", instructor.Role)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var stored models.Course
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, instructor.ID, stored.InstructorID)
}

func TestCourseCreateUnknownCategory(t *testing.T) {
	db := initTestDB(t)
	h := &CourseHandler{DB: db}
	e := echo.New()
	instructor := createUser(t, db, "sarah_dev", models.RoleInstructor)

	c, rec := jsonContext(t, e, http.MethodPost, "/courses/create", map[string]interface{}{
		"title":       "Orphan Course",
		"category_id": 999,
	})
	c.Set("userID", instructor.ID)
	c.Set("role", instructor.Role)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseList(t *testing.T) {
	db := initTestDB(t)
	h := &CourseHandler{DB: db}
	e := echo.New()

	instructor := createUser(t, db, "sarah_dev", models.RoleInstructor)
	cat := createCategory(t, db, "Software Engineering")
	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, db.Create(&models.Course{
			Title: title, CategoryID: cat.ID, InstructorID: instructor.ID,
		}).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/courses?page=1&size=2", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Course        `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.EqualValues(t, 3, resp.Meta["total"])
	require.Equal(t, true, resp.Meta["has_next"])
	require.Equal(t, "sarah_dev", resp.Data[0].Instructor.Username)
}

func TestEnrollmentCreate(t *testing.T) {
	db := initTestDB(t)
	h := &EnrollmentHandler{DB: db}
	e := echo.New()

	instructor := createUser(t, db, "sarah_dev", models.RoleInstructor)
	student := createUser(t, db, "alice", models.RoleStudent)
	cat := createCategory(t, db, "Software Engineering")
	course := models.Course{Title: "Go", CategoryID: cat.ID, InstructorID: instructor.ID}
	require.NoError(t, db.Create(&course).Error)

	c, rec := jsonContext(t, e, http.MethodPost, "/enroll", map[string]interface{}{"course_id": course.ID})
	c.Set("userID", student.ID)
	c.Set("role", student.Role)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Enrolling twice in the same course is rejected.
	cDup, recDup := jsonContext(t, e, http.MethodPost, "/enroll", map[string]interface{}{"course_id": course.ID})
	cDup.Set("userID", student.ID)
	cDup.Set("role", student.Role)
	require.NoError(t, h.Create(cDup))
	require.Equal(t, http.StatusBadRequest, recDup.Code)
}

func TestEnrollmentUnknownCourse(t *testing.T) {
	db := initTestDB(t)
	h := &EnrollmentHandler{DB: db}
	e := echo.New()
	student := createUser(t, db, "alice", models.RoleStudent)

	c, rec := jsonContext(t, e, http.MethodPost, "/enroll", map[string]interface{}{"course_id": 999})
	c.Set("userID", student.ID)
	c.Set("role", student.Role)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardCounts(t *testing.T) {
	db := initTestDB(t)
	h := &DashboardHandler{DB: db}
	e := echo.New()

	createUser(t, db, "admin", models.RoleAdmin)
	instructor := createUser(t, db, "sarah_dev", models.RoleInstructor)
	student := createUser(t, db, "alice", models.RoleStudent)
	createUser(t, db, "bob", models.RoleStudent)

	cat := createCategory(t, db, "Software Engineering")
	course := models.Course{Title: "Go", CategoryID: cat.ID, InstructorID: instructor.ID}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&models.Enrollment{CourseID: course.ID, StudentID: student.ID}).Error)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.View(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalUsers       int64            `json:"total_users"`
		TotalCourses     int64            `json:"total_courses"`
		TotalEnrollments int64            `json:"total_enrollments"`
		RoleWiseUsers    map[string]int64 `json:"role_wise_users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 4, resp.TotalUsers)
	require.EqualValues(t, 1, resp.TotalCourses)
	require.EqualValues(t, 1, resp.TotalEnrollments)
	require.EqualValues(t, 1, resp.RoleWiseUsers["admin"])
	require.EqualValues(t, 1, resp.RoleWiseUsers["instructor"])
	require.EqualValues(t, 2, resp.RoleWiseUsers["student"])
}
