package httpserver

import (
	"github.com/labstack/echo/v4"

	authhdl "github.com/mdalbakiakon/lms-backend/internal/handlers/auth"
	"github.com/mdalbakiakon/lms-backend/internal/handlers/lms"
	authmw "github.com/mdalbakiakon/lms-backend/internal/middleware/auth"
)

type Deps struct {
	Auth        *authhdl.AuthHandler
	Categories  *lms.CategoryHandler
	Courses     *lms.CourseHandler
	Enrollments *lms.EnrollmentHandler
	Dashboard   *lms.DashboardHandler
	Search      *lms.SearchHandler
	MW          *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.POST("/token/refresh", d.Auth.RefreshToken)
	e.POST("/forgot-password", d.Auth.ForgotPassword)
	e.POST("/reset-password", d.Auth.ResetPassword)

	authed := e.Group("", d.MW.Authenticate)

	authed.GET("/profile", d.Auth.GetProfile, d.MW.Require("profile:view"))
	authed.PUT("/profile", d.Auth.UpdateProfile, d.MW.Require("profile:update"))

	authed.GET("/categories", d.Categories.List, d.MW.Require("category:list"))
	authed.POST("/categories/create", d.Categories.Create, d.MW.Require("category:create"))

	authed.GET("/courses", d.Courses.List, d.MW.Require("course:list"))
	authed.POST("/courses/create", d.Courses.Create, d.MW.Require("course:create"))
	authed.GET("/courses/search", d.Search.Search, d.MW.Require("course:search"))

	authed.POST("/enroll", d.Enrollments.Create, d.MW.Require("enrollment:create"))
	authed.GET("/dashboard", d.Dashboard.View, d.MW.Require("dashboard:view"))
}
