package page

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"
)

// Widget is one opaque rendering unit of a page
type Widget interface {
	Render(ctx context.Context, w io.Writer) error
}

// Question is a list entry as the backend returns it
type Question struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Answers int      `json:"answers"`
}

// QuestionSource loads the questions listed under a tab
type QuestionSource interface {
	Questions(ctx context.Context, tab Tab) ([]Question, error)
}

type HomeTitle struct{}

func (HomeTitle) Render(_ context.Context, w io.Writer) error {
	return widgetTemplates.ExecuteTemplate(w, "home_title", nil)
}

// HomeButtons switches between tabs. The browser reaches SetActiveTab through
// the ?tab= links it renders.
type HomeButtons struct {
	ActiveTab    Tab
	SetActiveTab func(Tab)
}

type tabButton struct {
	Tab    Tab
	Active bool
}

func (b HomeButtons) Render(_ context.Context, w io.Writer) error {
	buttons := make([]tabButton, 0, len(Tabs))
	for _, t := range Tabs {
		buttons = append(buttons, tabButton{Tab: t, Active: t == b.ActiveTab})
	}
	return widgetTemplates.ExecuteTemplate(w, "home_buttons", buttons)
}

// Select forwards a tab choice to the owning page
func (b HomeButtons) Select(t Tab) {
	if b.SetActiveTab != nil {
		b.SetActiveTab(t)
	}
}

type HomeSearch struct{}

func (HomeSearch) Render(_ context.Context, w io.Writer) error {
	return widgetTemplates.ExecuteTemplate(w, "home_search", nil)
}

type HomeTags struct{}

func (HomeTags) Render(_ context.Context, w io.Writer) error {
	return widgetTemplates.ExecuteTemplate(w, "home_tags", nil)
}

type HomeQuestions struct {
	ActiveTab Tab
	Source    QuestionSource
}

type questionsData struct {
	Tab         Tab
	Questions   []Question
	Unavailable bool
}

func (q HomeQuestions) Render(ctx context.Context, w io.Writer) error {
	data := questionsData{Tab: q.ActiveTab}
	if q.Source != nil {
		questions, err := q.Source.Questions(ctx, q.ActiveTab)
		if err != nil {
			log.Err(err).Str("tab", q.ActiveTab.String()).Msg("Failed to load questions")
			data.Unavailable = true
		}
		data.Questions = questions
	}
	return widgetTemplates.ExecuteTemplate(w, "home_questions", data)
}
