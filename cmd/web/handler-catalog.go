package main

import (
	"github.com/myrjola/interviewprep/internal/models"
	"net/http"
)

// categories lists the ordered categories of the variant given in the query, or of the default variant.
func (app *application) categories(w http.ResponseWriter, r *http.Request) {
	catalog := app.controller.Catalog()
	seq, err := catalog.Variant(r.URL.Query().Get("variant"))
	if err != nil {
		app.interviewError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, models.CategoriesResponse{
		Categories: seq.Categories,
		Total:      seq.Total(),
		Variant:    seq.Name,
		Variants:   catalog.VariantNames(),
	})
}

func (app *application) interviewTypes(w http.ResponseWriter, r *http.Request) {
	catalog := app.controller.Catalog()
	ids := catalog.TypeIDs()
	descriptions := make(map[string]string, len(ids))
	for _, id := range ids {
		t, err := catalog.Type(id)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		descriptions[id] = t.Description
	}
	app.writeJSON(w, r, http.StatusOK, models.InterviewTypesResponse{Types: ids, Descriptions: descriptions})
}
