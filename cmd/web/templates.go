package main

import (
	"bytes"
	"github.com/myrjola/interviewprep/internal/contexthelpers"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/ui"
	"html/template"
	"log/slog"
	"net/http"
)

// BaseTemplateData is embedded in the data of every page.
type BaseTemplateData struct {
	Nonce string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		Nonce: contexthelpers.CSPNonce(r.Context()),
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to a file in the ui/templates folder. It has to define the templates "title" and "page".
func pageTemplate(pageName string) (*template.Template, error) {
	t, err := template.ParseFS(ui.Templates, "templates/base.gohtml", "templates/"+pageName+".gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates", slog.String("page", pageName))
	}
	return t, nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var (
		err error
		t   *template.Template
	)

	if t, err = pageTemplate(page); err != nil {
		app.serverError(w, r, err)
		return
	}

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
