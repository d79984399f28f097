package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/ops"
)

// maxFormBytes bounds admin request bodies.
const maxFormBytes = 4 << 20

// ArticleForm is the admin editor's field set, kept as submitted so a
// rejected form can be shown again unchanged.
type ArticleForm struct {
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	Status     string
	Categories string // comma-separated
	Tags       string // comma-separated
	Date       string
	Author     string
	Views      string
}

func formFromRequest(r *http.Request) ArticleForm {
	return ArticleForm{
		Title:      r.PostFormValue("title"),
		Slug:       r.PostFormValue("slug"),
		Excerpt:    r.PostFormValue("excerpt"),
		Content:    r.PostFormValue("content"),
		Status:     r.PostFormValue("status"),
		Categories: r.PostFormValue("categories"),
		Tags:       r.PostFormValue("tags"),
		Date:       r.PostFormValue("date"),
		Author:     r.PostFormValue("author"),
		Views:      r.PostFormValue("views"),
	}
}

func formFromRecord(rec *db.Record) ArticleForm {
	return ArticleForm{
		Title:      rec.Title,
		Slug:       rec.Slug,
		Excerpt:    rec.Excerpt,
		Content:    rec.Content,
		Status:     string(rec.Status),
		Categories: strings.Join(rec.Categories, ", "),
		Tags:       strings.Join(rec.Tags, ", "),
		Date:       rec.Date,
		Author:     rec.Author,
		Views:      strconv.Itoa(rec.Views),
	}
}

func (f ArticleForm) views() (int, error) {
	s := strings.TrimSpace(f.Views)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fErr := errors.NewInvalidRequest("views: must be a whole number")
		fErr.Details = map[string]any{"views": "must be a whole number"}
		return 0, fErr
	}
	return n, nil
}

func (f ArticleForm) createInput() (ops.CreateInput, error) {
	views, err := f.views()
	if err != nil {
		return ops.CreateInput{}, err
	}
	return ops.CreateInput{
		Title:      f.Title,
		Content:    f.Content,
		Slug:       f.Slug,
		Excerpt:    f.Excerpt,
		Status:     f.Status,
		Categories: article.SplitList(f.Categories),
		Tags:       article.SplitList(f.Tags),
		Date:       f.Date,
		Author:     f.Author,
		Views:      views,
	}, nil
}

// updateInput sets every field: the editor always submits the whole article.
func (f ArticleForm) updateInput(id int64) (ops.UpdateInput, error) {
	views, err := f.views()
	if err != nil {
		return ops.UpdateInput{}, err
	}
	categories := article.SplitList(f.Categories)
	tags := article.SplitList(f.Tags)
	return ops.UpdateInput{
		ID:         id,
		NewSlug:    &f.Slug,
		Title:      &f.Title,
		Excerpt:    &f.Excerpt,
		Content:    &f.Content,
		Status:     &f.Status,
		Categories: &categories,
		Tags:       &tags,
		Date:       &f.Date,
		Author:     &f.Author,
		Views:      &views,
	}, nil
}

// HandleAdminOverview handles GET /admin.
func (h *Handlers) HandleAdminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := ops.Overview(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, overview)
		return
	}
	h.renderer.renderPage(w, r, "admin_overview", AdminOverviewData{
		PageData: h.renderer.pageData("Dashboard", "admin"),
		Overview: overview,
	})
}

// HandleAdminList handles GET /admin/articles.
func (h *Handlers) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Status: r.URL.Query().Get("status"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := AdminListData{
		PageData:   h.renderer.pageData("Articles", "admin"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Status:     input.Status,
	}
	p := result.Pagination
	if p.Offset > 0 {
		data.PrevURL = adminListURL(input.Status, p.Limit, max(p.Offset-p.Limit, 0))
	}
	if p.HasMore {
		data.NextURL = adminListURL(input.Status, p.Limit, p.Offset+p.Limit)
	}
	h.renderer.renderPage(w, r, "admin_list", data)
}

func adminListURL(status string, limit, offset int) string {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))
	return "/admin/articles?" + v.Encode()
}

// HandleAdminNew handles GET /admin/articles/new.
func (h *Handlers) HandleAdminNew(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "admin_form", AdminFormData{
		PageData: h.renderer.pageData("New article", "admin"),
		Action:   "/admin/articles",
		Form:     ArticleForm{Status: string(article.DefaultStatus)},
	})
}

// HandleAdminCreate handles POST /admin/articles. JSON bodies are decoded
// as ops.CreateInput; form posts come from the editor.
func (h *Handlers) HandleAdminCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if isJSONBody(r) {
		var input ops.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
			return
		}
		out, err := ops.Create(r.Context(), h.db, input)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusCreated, out)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	form := formFromRequest(r)
	data := AdminFormData{
		PageData: h.renderer.pageData("New article", "admin"),
		Action:   "/admin/articles",
		Form:     form,
	}

	input, err := form.createInput()
	if err == nil {
		var out *ops.CreateOutput
		out, err = ops.Create(r.Context(), h.db, input)
		if err == nil {
			h.redirect(w, r, fmt.Sprintf("/admin/articles/%d/edit?saved=1", out.ID))
			return
		}
	}
	h.renderFormError(w, r, data, err)
}

// HandleAdminEdit handles GET /admin/articles/{id}/edit.
func (h *Handlers) HandleAdminEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	rec, err := ops.Fetch(h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, r, "admin_form", AdminFormData{
		PageData: h.renderer.pageData("Edit: "+rec.Title, "admin"),
		ID:       rec.ID,
		Action:   fmt.Sprintf("/admin/articles/%d", rec.ID),
		Form:     formFromRecord(&rec.Record),
		Saved:    r.URL.Query().Get("saved") == "1",
	})
}

// HandleAdminUpdate handles POST /admin/articles/{id}. JSON bodies are
// partial updates decoded as ops.UpdateInput.
func (h *Handlers) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if isJSONBody(r) {
		var input ops.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
			return
		}
		input.ID, input.Slug = id, ""
		out, err := ops.Update(r.Context(), h.db, input)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	form := formFromRequest(r)
	data := AdminFormData{
		PageData: h.renderer.pageData("Edit: "+form.Title, "admin"),
		ID:       id,
		Action:   fmt.Sprintf("/admin/articles/%d", id),
		Form:     form,
	}

	input, err := form.updateInput(id)
	if err == nil {
		_, err = ops.Update(r.Context(), h.db, input)
		if err == nil {
			h.redirect(w, r, fmt.Sprintf("/admin/articles/%d/edit?saved=1", id))
			return
		}
	}
	h.renderFormError(w, r, data, err)
}

// HandleAdminDelete handles DELETE /admin/articles/{id} and the form
// fallback POST /admin/articles/{id}/delete.
func (h *Handlers) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.redirect(w, r, "/admin/articles")
}

// renderFormError shows the editor again for input problems and falls back
// to the error page for anything else.
func (h *Handlers) renderFormError(w http.ResponseWriter, r *http.Request, data AdminFormData, err error) {
	fErr, ok := errors.As(err)
	if !ok || (fErr.Code != errors.ErrInvalidRequest && fErr.Code != errors.ErrSlugAlreadyExists) || wantsJSON(r) {
		h.renderer.renderError(w, r, err)
		return
	}
	data.Error = fErr.Message
	data.Details = fErr.Details
	h.renderer.renderPageStatus(w, r, fErr.Status, "admin_form", data)
}

// redirect sends the browser to location: an HX-Redirect for htmx
// requests, a 303 otherwise.
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, location string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
