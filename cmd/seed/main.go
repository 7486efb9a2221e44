// Command seed populates the database with demo data: an admin
// account, mentor instructors, course categories and demo courses.
// It is idempotent; existing rows are left alone.
package main

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/config"
	"github.com/mdalbakiakon/lms-backend/internal/hash"
	"github.com/mdalbakiakon/lms-backend/internal/models"
)

type mentorSpec struct {
	Username string
	Email    string
}

type courseSpec struct {
	Title       string
	Description string
	Duration    string
	Price       float64
	Category    string
	ImageURL    string
}

var mentors = []mentorSpec{
	{Username: "dr_smith", Email: "julian@station.edu"},
	{Username: "sarah_dev", Email: "sarah@station.edu"},
	{Username: "alex_design", Email: "alex@station.edu"},
	{Username: "michael_data", Email: "michael@station.edu"},
}

var categories = []models.Category{
	{Name: "Software Engineering", Description: "Master the art of coding and building scalable systems."},
	{Name: "Artificial Intelligence", Description: "Explore the future with Machine Learning, Deep Learning, and Neural Networks."},
	{Name: "Cybersecurity", Description: "Protect systems and networks from digital attacks."},
}

var courses = []courseSpec{
	{
		Title:       "React & Next.js: The Enterprise Guide",
		Description: "Learn to build high-performance, SEO-friendly web applications using the latest features of Next.js 15 and React Server Components.",
		Duration:    "24 Hours",
		Price:       89.99,
		Category:    "Software Engineering",
		ImageURL:    "https://images.unsplash.com/photo-1633356122544-f134324a6cee?auto=format&fit=crop&w=800&q=80",
	},
	{
		Title:       "Natural Language Processing with Transformers",
		Description: "Master BERT, GPT, and modern transformer architectures to build conversational AI and text analysis tools.",
		Duration:    "45 Hours",
		Price:       149.00,
		Category:    "Artificial Intelligence",
		ImageURL:    "https://images.unsplash.com/photo-1677442136019-21780ecad995?auto=format&fit=crop&w=800&q=80",
	},
	{
		Title:       "Ethical Hacking: Zero to Hero",
		Description: "Learn network penetration testing, web application security, and exploit development from a white-hat perspective.",
		Duration:    "50 Hours",
		Price:       129.99,
		Category:    "Cybersecurity",
		ImageURL:    "https://images.unsplash.com/photo-1550751827-4bd374c3f58b?auto=format&fit=crop&w=800&q=80",
	},
	{
		Title:       "Python for Data Science & AI",
		Description: "A comprehensive journey from Python basics to advanced machine learning models using NumPy, Pandas, and Scikit-learn.",
		Duration:    "32 Hours",
		Price:       120.00,
		Category:    "Software Engineering",
		ImageURL:    "https://images.unsplash.com/photo-1555949963-ff9fe0c870eb?auto=format&fit=crop&w=800&q=80",
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if err := seed(db); err != nil {
		log.Fatalf("seed error: %v", err)
	}
	log.Println("seed complete")
}

func seed(db *gorm.DB) error {
	if _, err := ensureUser(db, "admin", "admin@station.edu", "admin123", models.RoleAdmin); err != nil {
		return err
	}

	var instructors []models.User
	for _, m := range mentors {
		u, err := ensureUser(db, m.Username, m.Email, "mentor123", models.RoleInstructor)
		if err != nil {
			return err
		}
		instructors = append(instructors, *u)
	}

	byName := map[string]uint{}
	for _, cat := range categories {
		existing, err := ensureCategory(db, cat)
		if err != nil {
			return err
		}
		byName[existing.Name] = existing.ID
	}

	for i, spec := range courses {
		var course models.Course
		err := db.Where("title = ?", spec.Title).First(&course).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		instructor := instructors[i%len(instructors)]
		course = models.Course{
			Title:        spec.Title,
			Description:  spec.Description,
			Duration:     spec.Duration,
			Price:        spec.Price,
			ImageURL:     spec.ImageURL,
			CategoryID:   byName[spec.Category],
			InstructorID: instructor.ID,
		}
		if err := db.Create(&course).Error; err != nil {
			return err
		}
		log.Printf("created course %q (instructor %s)", course.Title, instructor.Username)
	}

	return nil
}

func ensureUser(db *gorm.DB, username, email, password, role string) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user = models.User{Username: username, Email: email, PasswordHash: pwHash, Role: role}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	log.Printf("created %s %q", role, username)
	return &user, nil
}

func ensureCategory(db *gorm.DB, cat models.Category) (*models.Category, error) {
	var existing models.Category
	err := db.Where("name = ?", cat.Name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.Create(&cat).Error; err != nil {
		return nil, err
	}
	log.Printf("created category %q", cat.Name)
	return &cat, nil
}
