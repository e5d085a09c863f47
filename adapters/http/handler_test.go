package cvhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cvtemplate "github.com/goliatone/go-cvbuilder/adapters/template"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/layout"
)

type stubPDF struct{}

func (stubPDF) Render(ctx context.Context, req cv.PDFRequest, w io.Writer, progress cv.ProgressFunc) error {
	_ = ctx
	_, err := io.WriteString(w, "%PDF-1.7 "+req.TemplateID)
	return err
}

type testEnv struct {
	app         *fiber.App
	store       *cv.Store
	persistence *cv.MemoryPersistence
}

func newTestEnv(t *testing.T, withHistory bool) testEnv {
	t.Helper()
	persistence := cv.NewMemoryPersistence()
	exporter := cv.NewExporter(stubPDF{})
	exporter.DefaultTemplate = layout.DefaultTemplate

	cfg := Config{Preview: cvtemplate.NewRenderer()}
	if withHistory {
		exporter.Tracker = cv.NewMemoryTracker()
		exporter.Artifacts = cv.NewMemoryArtifacts()
		cfg.Tracker = exporter.Tracker
		cfg.Artifacts = exporter.Artifacts
	}
	store := cv.NewStore(cv.NewDocument("doc-http"), persistence, exporter)
	cfg.Store = store
	return testEnv{
		app:         NewApp(NewHandler(cfg), AppConfig{}),
		store:       store,
		persistence: persistence,
	}
}

func (e testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const validPersonal = `{"fullName":"Jane Byrne","email":"jane@example.ie","phone":"+353 87 123 4567","address":"12 Main Street, Dublin 2"}`

func TestSubmitPersonalAndSave(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/cv/sections/personal", validPersonal)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[DocumentResponse](t, resp)
	assert.Equal(t, "Jane Byrne", out.Document.Personal.FullName)
	assert.True(t, out.Status.HasUnsavedChanges)

	resp = env.do(t, http.MethodPost, "/api/cv/document/save", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[cv.Status](t, resp)
	assert.False(t, status.HasUnsavedChanges)
	assert.Equal(t, 1, env.persistence.Saves())
}

func TestSubmitInvalidReturnsFieldErrors(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/cv/sections/personal",
		`{"fullName":"Jane Byrne","email":"jane@example.ie","phone":"555-1234","address":"Berlin"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[ErrorResponse](t, resp)
	assert.NotEmpty(t, out.Error.Fields)
	assert.Empty(t, env.store.Snapshot().Personal.FullName)
}

func TestSubmitUnknownSection(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/cv/sections/hobbies", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEntriesEditMoveRemove(t *testing.T) {
	env := newTestEnv(t, false)

	for _, lang := range []string{"Irish", "French"} {
		resp := env.do(t, http.MethodPost, "/api/cv/sections/languages",
			`{"language":"`+lang+`","proficiency":"B2"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := env.do(t, http.MethodPut, "/api/cv/sections/languages/1", `{"language":"French","proficiency":"C1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[DocumentResponse](t, resp)
	langs, _ := out.Document.Section(cv.SectionLanguages)
	require.Len(t, langs.Languages, 2)
	assert.Equal(t, "C1", langs.Languages[1].Proficiency)

	resp = env.do(t, http.MethodPost, "/api/cv/sections/languages/move", `{"from":1,"to":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[DocumentResponse](t, resp)
	langs, _ = out.Document.Section(cv.SectionLanguages)
	assert.Equal(t, "French", langs.Languages[0].Language)

	resp = env.do(t, http.MethodDelete, "/api/cv/sections/languages/0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[DocumentResponse](t, resp)
	langs, _ = out.Document.Section(cv.SectionLanguages)
	require.Len(t, langs.Languages, 1)
	assert.Equal(t, "Irish", langs.Languages[0].Language)

	resp = env.do(t, http.MethodPut, "/api/cv/sections/languages/x", `{"language":"German","proficiency":"A1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/cv/sections/languages/9", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVisibilityAndTemplates(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPut, "/api/cv/sections/awards/visibility", `{"visible":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.store.Snapshot().SectionVisibility[cv.SectionAwards])

	resp = env.do(t, http.MethodGet, "/api/cv/templates", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decode[struct {
		Templates []layout.Info `json:"templates"`
	}](t, resp)
	assert.Len(t, listing.Templates, 4)

	resp = env.do(t, http.MethodPut, "/api/cv/template", `{"id":"cork"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cork", env.store.Snapshot().TemplateID)

	resp = env.do(t, http.MethodPut, "/api/cv/template", `{"id":"galway"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResetRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, http.MethodPost, "/api/cv/sections/personal", validPersonal)

	resp := env.do(t, http.MethodPost, "/api/cv/document/reset", `{"confirm":false}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Jane Byrne", env.store.Snapshot().Personal.FullName)

	resp = env.do(t, http.MethodPost, "/api/cv/document/reset", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, env.store.Snapshot().Personal.FullName)
}

func TestLoadMissingDocument(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/cv/document/load", `{"id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReferencesClear(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/cv/sections/references", `{"mode":"on-request"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/cv/sections/references", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/cv/sections/skills", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFormsAndSchema(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodGet, "/api/cv/forms/personal/schema", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fullName")

	resp = env.do(t, http.MethodGet, "/api/cv/forms/hobbies/schema", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/cv/forms", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPreviewAndValidate(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, http.MethodPost, "/api/cv/sections/personal", validPersonal)

	resp := env.do(t, http.MethodGet, "/api/cv/preview?template=london", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Jane Byrne")

	resp = env.do(t, http.MethodGet, "/api/cv/document/validate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[map[string]any](t, resp)
	assert.Equal(t, true, report["valid"])
}

func TestDownloadPDFAndHistory(t *testing.T) {
	env := newTestEnv(t, true)
	env.do(t, http.MethodPost, "/api/cv/sections/personal", validPersonal)

	resp := env.do(t, http.MethodGet, "/api/cv/pdf?template=stockholm", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "jane-byrne-cv.pdf")
	exportID := resp.Header.Get("X-Export-ID")
	require.NotEmpty(t, exportID)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 stockholm", string(body))

	resp = env.do(t, http.MethodGet, "/api/cv/exports", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]cv.ExportRecord](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, cv.ExportStateSucceeded, records[0].State)

	resp = env.do(t, http.MethodGet, "/api/cv/exports/"+exportID+"/download", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 stockholm", string(body))

	resp = env.do(t, http.MethodGet, "/api/cv/exports/nope/download", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportsWithoutTracker(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodGet, "/api/cv/exports", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{cv.NewError(cv.KindValidation, "bad", nil), http.StatusBadRequest},
		{cv.NewError(cv.KindNotFound, "missing", nil), http.StatusNotFound},
		{cv.NewError(cv.KindConflict, "busy", nil), http.StatusConflict},
		{cv.NewError(cv.KindPersistence, "disk", nil), http.StatusBadGateway},
		{cv.NewError(cv.KindNotImpl, "nope", nil), http.StatusNotImplemented},
		{cv.NewError(cv.KindInternal, "boom", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusForError(cv.AsGoError(tc.err)), tc.err.Error())
	}
}
