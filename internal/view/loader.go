package view

import (
	"context"
	"sync"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/model"
)

// State of a dashboard page.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Section names shared by the dashboards.
const (
	SectionAvailable = "available"
	SectionMine      = "mine"
	SectionUploaded  = "uploaded"
)

// Section is one independently fetched course list on a dashboard. A
// failed fetch sets Error and leaves Courses empty; other sections are
// unaffected.
type Section struct {
	Courses []CourseCard `json:"courses"`
	Error   string       `json:"error,omitempty"`
}

// Fetch loads one section's course list.
type Fetch func(ctx context.Context) ([]model.Course, error)

// SectionSpec pairs a section fetch with the text displayed when the fetch
// fails without a server-provided message.
type SectionSpec struct {
	Load     Fetch
	Fallback string
}

// Page is a dashboard's view state.
type Page struct {
	State    State              `json:"state"`
	User     model.Identity     `json:"user"`
	Sections map[string]Section `json:"sections"`

	mu sync.Mutex
}

// LoadPage assembles a dashboard page: every section is fetched
// concurrently and the page returns in the ready state. Sections may
// complete in either order and each applies only its own result;
// completion order never changes the final page. A section's failure is
// recorded on that section alone. Results arriving after ctx is done are
// discarded — the page they belong to has been abandoned.
func LoadPage(ctx context.Context, user model.Identity, r Renderer, specs map[string]SectionSpec) *Page {
	page := &Page{
		State:    StateLoading,
		User:     user,
		Sections: make(map[string]Section, len(specs)),
	}
	for name := range specs {
		page.Sections[name] = Section{Courses: []CourseCard{}}
	}

	var wg sync.WaitGroup
	for name, spec := range specs {
		wg.Add(1)
		go func(name string, spec SectionSpec) {
			defer wg.Done()
			courses, err := spec.Load(ctx)

			var section Section
			if err != nil {
				section = Section{Courses: []CourseCard{}, Error: adapter.Display(err, spec.Fallback)}
			} else {
				section = Section{Courses: NewCards(courses, r)}
			}
			page.apply(ctx, name, section)
		}(name, spec)
	}
	wg.Wait()

	page.mu.Lock()
	page.State = StateReady
	page.mu.Unlock()
	return page
}

// apply records one section's result unless the page's context has ended.
func (p *Page) apply(ctx context.Context, name string, section Section) {
	if ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	p.Sections[name] = section
	p.mu.Unlock()
}

// SectionFrom fetches a single section synchronously; dashboards use it to
// refresh the one list a mutation depends on.
func SectionFrom(ctx context.Context, r Renderer, spec SectionSpec) Section {
	courses, err := spec.Load(ctx)
	if err != nil {
		return Section{Courses: []CourseCard{}, Error: adapter.Display(err, spec.Fallback)}
	}
	return Section{Courses: NewCards(courses, r)}
}
