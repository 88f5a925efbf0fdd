package view

import (
	"context"
	"reflect"
	"testing"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/model"
)

func staticFetch(courses []model.Course) Fetch {
	return func(ctx context.Context) ([]model.Course, error) {
		return courses, nil
	}
}

// gatedFetch blocks until released, so tests control completion order.
func gatedFetch(courses []model.Course, release <-chan struct{}) Fetch {
	return func(ctx context.Context) ([]model.Course, error) {
		<-release
		return courses, nil
	}
}

func TestLoadPageReady(t *testing.T) {
	page := LoadPage(context.Background(), model.Identity{Username: "alice"}, nil, map[string]SectionSpec{
		SectionAvailable: {Load: staticFetch([]model.Course{{ID: "1", Title: "Go"}})},
		SectionMine:      {Load: staticFetch(nil)},
	})

	if page.State != StateReady {
		t.Fatalf("State = %q, want %q", page.State, StateReady)
	}
	if page.User.Username != "alice" {
		t.Errorf("User = %+v", page.User)
	}
	if got := len(page.Sections[SectionAvailable].Courses); got != 1 {
		t.Errorf("available section has %d courses, want 1", got)
	}
	if page.Sections[SectionMine].Courses == nil {
		t.Error("empty section should marshal as [], not null")
	}
}

func TestLoadPageOrderIndependent(t *testing.T) {
	available := []model.Course{{ID: "1", Title: "Available"}}
	mine := []model.Course{{ID: "2", Title: "Mine"}}

	run := func(firstSection string) map[string]Section {
		gates := map[string]chan struct{}{
			SectionAvailable: make(chan struct{}),
			SectionMine:      make(chan struct{}),
		}
		done := make(chan *Page)
		go func() {
			done <- LoadPage(context.Background(), model.Identity{}, nil, map[string]SectionSpec{
				SectionAvailable: {Load: gatedFetch(available, gates[SectionAvailable])},
				SectionMine:      {Load: gatedFetch(mine, gates[SectionMine])},
			})
		}()
		close(gates[firstSection])
		for name, gate := range gates {
			if name != firstSection {
				close(gate)
			}
		}
		return (<-done).Sections
	}

	first := run(SectionAvailable)
	second := run(SectionMine)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("section completion order changed the page:\n%+v\nvs\n%+v", first, second)
	}
}

func TestLoadPageSectionFailureIsIsolated(t *testing.T) {
	boom := func(ctx context.Context) ([]model.Course, error) {
		return nil, &adapter.APIError{StatusCode: 500, Message: "upstream exploded"}
	}
	page := LoadPage(context.Background(), model.Identity{}, nil, map[string]SectionSpec{
		SectionAvailable: {Load: boom, Fallback: "Failed to load available courses"},
		SectionMine:      {Load: staticFetch([]model.Course{{ID: "2"}})},
	})

	if got := page.Sections[SectionAvailable].Error; got != "upstream exploded" {
		t.Errorf("failed section error = %q", got)
	}
	if got := len(page.Sections[SectionAvailable].Courses); got != 0 {
		t.Errorf("failed section has %d courses, want 0", got)
	}
	if got := len(page.Sections[SectionMine].Courses); got != 1 {
		t.Errorf("healthy section has %d courses, want 1", got)
	}
}

func TestLoadPageFallbackMessage(t *testing.T) {
	boom := func(ctx context.Context) ([]model.Course, error) {
		return nil, context.DeadlineExceeded
	}
	page := LoadPage(context.Background(), model.Identity{}, nil, map[string]SectionSpec{
		SectionMine: {Load: boom, Fallback: "Failed to load your courses"},
	})
	if got := page.Sections[SectionMine].Error; got != "Failed to load your courses" {
		t.Errorf("Error = %q, want fallback text", got)
	}
}

func TestLoadPageDiscardsResultsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	fetched := []model.Course{{ID: "1", Title: "late arrival"}}

	done := make(chan *Page)
	go func() {
		done <- LoadPage(ctx, model.Identity{}, nil, map[string]SectionSpec{
			SectionAvailable: {Load: gatedFetch(fetched, release)},
		})
	}()

	cancel()
	close(release)
	page := <-done

	if got := len(page.Sections[SectionAvailable].Courses); got != 0 {
		t.Errorf("canceled page applied a late result: %d courses", got)
	}
}

func TestSectionFrom(t *testing.T) {
	section := SectionFrom(context.Background(), nil, SectionSpec{
		Load: staticFetch([]model.Course{{ID: "9", Title: "Fresh"}}),
	})
	if len(section.Courses) != 1 || section.Courses[0].Title != "Fresh" {
		t.Errorf("unexpected section: %+v", section)
	}

	failed := SectionFrom(context.Background(), nil, SectionSpec{
		Load: func(ctx context.Context) ([]model.Course, error) {
			return nil, &adapter.APIError{StatusCode: 400, Message: "Already enrolled"}
		},
		Fallback: "Failed to load your courses",
	})
	if failed.Error != "Already enrolled" {
		t.Errorf("Error = %q", failed.Error)
	}
	if failed.Courses == nil {
		t.Error("failed section should keep an empty, non-nil course list")
	}
}
