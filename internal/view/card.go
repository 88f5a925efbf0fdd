package view

import "github.com/coursedeck/backend/internal/model"

// Renderer converts Markdown to HTML. Satisfied by markdown.Renderer; nil
// is allowed and skips description rendering.
type Renderer interface {
	Render(source []byte) ([]byte, error)
}

// CourseCard is one rendered course entry on a dashboard.
type CourseCard struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"description_html,omitempty"`
	CreatedBy       string `json:"created_by,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	Enrollments     int    `json:"enrollments"`
	EnrolledAt      string `json:"enrolled_at,omitempty"`
	Media           Media  `json:"media"`
}

// NewCard builds the card for one course. A description that fails to
// render ships raw; the card never fails.
func NewCard(c model.Course, r Renderer) CourseCard {
	card := CourseCard{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		Enrollments: c.Enrollments,
		EnrolledAt:  c.EnrolledAt,
		Media:       ResolveMedia(c),
	}
	if r != nil && c.Description != "" {
		if html, err := r.Render([]byte(c.Description)); err == nil {
			card.DescriptionHTML = string(html)
		}
	}
	return card
}

// NewCards builds cards for a course list, never returning nil so empty
// sections marshal as [] rather than null.
func NewCards(courses []model.Course, r Renderer) []CourseCard {
	cards := make([]CourseCard, 0, len(courses))
	for _, c := range courses {
		cards = append(cards, NewCard(c, r))
	}
	return cards
}
