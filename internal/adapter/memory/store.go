package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/model"
)

const timeLayout = "2006-01-02 15:04"

type user struct {
	Username string
	Email    string
	Password string
	Role     string
}

type course struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	VideoURL    string
	YoutubeLink string
}

// Store is an in-memory course marketplace used in dev mode and for demo
// sessions. It mirrors the upstream API's behavior, including its error
// messages, so handlers cannot tell the two apart.
type Store struct {
	mu          sync.Mutex
	users       map[string]user
	courses     map[string]*course
	order       []string
	enrollments map[string]map[string]time.Time
	secret      string
	nextID      int
}

// NewStore seeds a marketplace with two demo accounts and a few courses
// covering each media shape.
func NewStore(secret string) *Store {
	s := &Store{
		users:       make(map[string]user),
		courses:     make(map[string]*course),
		enrollments: make(map[string]map[string]time.Time),
		secret:      secret,
	}
	s.users["demo-teacher"] = user{
		Username: "demo-teacher",
		Email:    "teacher@coursedeck.dev",
		Password: "demo",
		Role:     model.RoleTeacher,
	}
	s.users["demo-student"] = user{
		Username: "demo-student",
		Email:    "student@coursedeck.dev",
		Password: "demo",
		Role:     model.RoleStudent,
	}
	s.seedCourse(&course{
		Title:       "Getting Started with CourseDeck",
		Description: "A **quick tour** of the platform.",
		CreatedBy:   "demo-teacher",
		YoutubeLink: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	s.seedCourse(&course{
		Title:       "Self-Hosted Video Demo",
		Description: "A course backed by an uploaded video file.",
		CreatedBy:   "demo-teacher",
		VideoURL:    "/serve_video/seed-2",
	})
	s.seedCourse(&course{
		Title:       "Reading List",
		Description: "Text-only course with *no* video attached.",
		CreatedBy:   "demo-teacher",
	})
	return s
}

func (s *Store) seedCourse(c *course) {
	s.nextID++
	c.ID = fmt.Sprintf("%d", s.nextID)
	c.CreatedAt = time.Now().Add(-time.Duration(s.nextID) * time.Hour)
	s.courses[c.ID] = c
	s.order = append(s.order, c.ID)
}

func (s *Store) Register(reg adapter.Registration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg.Email == "" || reg.Username == "" || reg.Password == "" || reg.Role == "" {
		return "", &adapter.APIError{StatusCode: 400, Message: "All fields are required"}
	}
	if reg.Role == "admin" {
		return "", &adapter.APIError{StatusCode: 403, Message: "You cannot register as admin"}
	}
	for _, u := range s.users {
		if u.Username == reg.Username || u.Email == reg.Email {
			return "", &adapter.APIError{StatusCode: 400, Message: "Email or Username already exists"}
		}
	}
	s.users[reg.Username] = user{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
		Role:     reg.Role,
	}
	return "User registered successfully", nil
}

// Login checks credentials and mints a bearer token shaped like the
// upstream's, so the identity decoder works on both.
func (s *Store) Login(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok || u.Password != password {
		return "", &adapter.APIError{StatusCode: 401, Message: "Invalid username or password"}
	}
	claims := jwt.MapClaims{
		"id":       u.Username,
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("signing demo token: %w", err)
	}
	return token, nil
}

func (s *Store) listCourses() []model.Course {
	out := make([]model.Course, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.toModel(s.courses[id]))
	}
	return out
}

func (s *Store) toModel(c *course) model.Course {
	return model.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt.Format(timeLayout),
		Enrollments: len(s.enrollments[c.ID]),
		VideoURL:    c.VideoURL,
		YoutubeLink: c.YoutubeLink,
	}
}

func (s *Store) enroll(username, courseID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		return "", &adapter.APIError{StatusCode: 404, Message: "Course not found"}
	}
	if s.enrollments[courseID] == nil {
		s.enrollments[courseID] = make(map[string]time.Time)
	}
	if _, ok := s.enrollments[courseID][username]; ok {
		return "", &adapter.APIError{StatusCode: 400, Message: "Already enrolled"}
	}
	s.enrollments[courseID][username] = time.Now()
	return "Enrolled successfully", nil
}

func (s *Store) myCourses(username string) []model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Course
	for _, id := range s.order {
		at, ok := s.enrollments[id][username]
		if !ok {
			continue
		}
		c := s.toModel(s.courses[id])
		c.EnrolledAt = at.Format(timeLayout)
		out = append(out, c)
	}
	return out
}

func (s *Store) uploadedBy(username string) []model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Course
	for _, id := range s.order {
		if s.courses[id].CreatedBy != username {
			continue
		}
		out = append(out, s.toModel(s.courses[id]))
	}
	return out
}

func (s *Store) upload(u user, up adapter.Upload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Role != model.RoleTeacher {
		return "", &adapter.APIError{StatusCode: 403, Message: "Only teachers can upload courses"}
	}
	if up.Title == "" {
		return "", &adapter.APIError{StatusCode: 400, Message: "Title is required"}
	}
	c := &course{
		Title:       up.Title,
		Description: up.Description,
		CreatedBy:   u.Username,
		YoutubeLink: up.YoutubeLink,
	}
	s.seedCourse(c)
	c.CreatedAt = time.Now()
	if len(up.Video) > 0 {
		c.VideoURL = "/serve_video/" + c.ID
	}
	return "Course uploaded successfully", nil
}
