package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mw "motorline.org/motorline-web/internal/middleware"
	"motorline.org/motorline-web/internal/nav"
	"motorline.org/motorline-web/internal/seo"
)

const brandName = "Motorline"

// PageData is the view model every page template receives.
type PageData struct {
	Title       string
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	SignedIn    bool
	UserID      string
	CSRFToken   string
	Flash       string
	SEO         seo.Meta

	// Data holds the page-specific view model.
	Data any
}

// newPageData assembles the chrome shared by every page.
func newPageData(r *http.Request, title, description string) PageData {
	u := mw.UserFromContext(r.Context())
	pd := PageData{
		Title:       title,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path, u != nil),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		SignedIn:    u != nil,
		CSRFToken:   mw.CSRFToken(r),
	}
	if u != nil {
		pd.UserID = u.ID
	}
	pd.SEO.Title = title + " | " + brandName
	pd.SEO.Description = description
	pd.SEO.Canonical = absoluteURL(r)
	pd.SEO.OG.Title = pd.SEO.Title
	pd.SEO.OG.Description = description
	pd.SEO.OG.Type = "website"
	pd.SEO.Twitter.Card = "summary_large_image"
	return pd
}

// absoluteURL reconstructs the request URL for canonical links.
func absoluteURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// requestToken returns the signed-in user's bearer token, or "" for guests.
func requestToken(r *http.Request) string {
	if u := mw.UserFromContext(r.Context()); u != nil {
		return u.Token
	}
	return ""
}

// requestUserID returns the signed-in user's canonical ID, or "" for guests.
func requestUserID(r *http.Request) string {
	if u := mw.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
