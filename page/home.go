// Package page composes the landing page out of its widgets.
package page

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"
)

//go:embed templates/*
var templateFiles embed.FS

var (
	widgetTemplates = template.Must(template.ParseFS(templateFiles, "templates/widgets.html"))
	homeTemplate    = template.Must(template.ParseFS(templateFiles, "templates/home.html"))
)

// Home owns the active tab and hands it to the widgets that need it
type Home struct {
	mu        sync.RWMutex
	activeTab Tab
	source    QuestionSource
}

// HomeWidgets is the widget tree of the home page in render order
type HomeWidgets struct {
	Title     HomeTitle
	Buttons   HomeButtons
	Search    HomeSearch
	Tags      HomeTags
	Questions HomeQuestions
}

func NewHome(source QuestionSource) *Home {
	return &Home{activeTab: DefaultTab, source: source}
}

func (h *Home) ActiveTab() Tab {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.activeTab
}

func (h *Home) SetActiveTab(t Tab) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activeTab = t
}

// Widgets builds the tree for the current tab. Only the buttons get the setter,
// only the buttons and the question list see the tab.
func (h *Home) Widgets() HomeWidgets {
	tab := h.ActiveTab()
	return HomeWidgets{
		Title:     HomeTitle{},
		Buttons:   HomeButtons{ActiveTab: tab, SetActiveTab: h.SetActiveTab},
		Search:    HomeSearch{},
		Tags:      HomeTags{},
		Questions: HomeQuestions{ActiveTab: tab, Source: h.source},
	}
}

type homeData struct {
	Header    []template.HTML
	Questions template.HTML
}

// Render writes the page shell with every widget rendered in place
func (h *Home) Render(ctx context.Context, w io.Writer) error {
	widgets := h.Widgets()

	var data homeData
	for _, widget := range []Widget{widgets.Title, widgets.Buttons, widgets.Search, widgets.Tags} {
		html, err := renderWidget(ctx, widget)
		if err != nil {
			return err
		}
		data.Header = append(data.Header, html)
	}

	questions, err := renderWidget(ctx, widgets.Questions)
	if err != nil {
		return err
	}
	data.Questions = questions

	if err := homeTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("[Home Render] %w", err)
	}
	return nil
}

func renderWidget(ctx context.Context, widget Widget) (template.HTML, error) {
	var buf bytes.Buffer
	if err := widget.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("[Home Render] %T: %w", widget, err)
	}
	// Widget output comes from html/template and is already escaped
	return template.HTML(buf.String()), nil
}
