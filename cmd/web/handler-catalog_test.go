package main

import (
	"github.com/myrjola/interviewprep/internal/models"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"testing"
)

func Test_application_categories(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)

	var full models.CategoriesResponse
	require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/categories", &full))
	require.Equal(t, "full", full.Variant)
	require.Equal(t, 10, full.Total)
	require.Len(t, full.Categories, 10)
	require.Equal(t, "Introduction", full.Categories[0])
	require.ElementsMatch(t, []string{"full", "core"}, full.Variants)

	var core models.CategoriesResponse
	require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/categories?variant=core", &core))
	require.Equal(t, coreTotal, core.Total)
	require.NotContains(t, core.Categories, "Technical Knowledge - Clinical Procedures")

	var errResp models.ErrorResponse
	require.Equal(t, http.StatusBadRequest, server.GetJSON(t, "/api/categories?variant=express", &errResp))
	require.Contains(t, errResp.Detail, "unknown interview variant")
}

func Test_application_categories_defaultVariantFromConfig(t *testing.T) {
	server := startTestServer(t, io.Discard, map[string]string{"INTERVIEW_DEFAULT_VARIANT": "core"})

	var resp models.CategoriesResponse
	require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/categories", &resp))
	require.Equal(t, "core", resp.Variant)
	require.Equal(t, coreTotal, resp.Total)
}

func Test_application_interviewTypes(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)

	var resp models.InterviewTypesResponse
	require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/interview-types", &resp))
	require.ElementsMatch(t, []string{"dentist", "hygienist"}, resp.Types)
	require.Len(t, resp.Descriptions, 2)
	require.NotEmpty(t, resp.Descriptions["hygienist"])
}
