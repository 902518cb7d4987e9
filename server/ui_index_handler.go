package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-qa-web/page"
	"github.com/jrsteele09/go-qa-web/storage"
	"github.com/rs/zerolog/log"
)

type IndexPageData struct {
	PageData
	Home template.HTML
}

// IndexHandler renders the home page. ?tab= is routed to the tab buttons' setter.
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		browserID, _ := BrowserID(ctx)
		access := s.storedToken(ctx, browserID, storage.KeyAccessToken)
		home := page.NewHome(s.api.QuestionSource(access))
		if raw := r.URL.Query().Get("tab"); raw != "" {
			if tab, err := page.ParseTab(raw); err == nil {
				home.Widgets().Buttons.Select(tab)
			} else {
				log.Debug().Err(err).Msg("Index: ignoring tab")
			}
		}

		var body bytes.Buffer
		if err := home.Render(ctx, &body); err != nil {
			log.Err(err).Msg("Failed to render home page")
			http.Error(w, "Failed to render home page", http.StatusInternalServerError)
			return
		}

		data := IndexPageData{
			PageData: s.pageData(ctx, browserID),
			Home:     template.HTML(body.String()),
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render index template")
		}
	}
}
