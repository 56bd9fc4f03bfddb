package main

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"motorline.org/motorline-web/internal/authn"
	"motorline.org/motorline-web/internal/marketplace"
	mw "motorline.org/motorline-web/internal/middleware"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var phoneRe = regexp.MustCompile(`^\d{10}$`)

// loginView is the login page view model.
type loginView struct {
	Email  string
	Errors map[string]string
}

func (a *app) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	if mw.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/cars", http.StatusSeeOther)
		return
	}
	pd := newPageData(r, "Login", "Sign in to your Motorline account.")
	pd.Data = loginView{Errors: map[string]string{}}
	renderPage(w, r, "login", http.StatusOK, pd)
}

func (a *app) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := loginView{
		Email:  strings.TrimSpace(r.PostFormValue("email")),
		Errors: map[string]string{},
	}
	password := r.PostFormValue("password")
	if view.Email == "" {
		view.Errors["email"] = "Email is required."
	}
	if password == "" {
		view.Errors["password"] = "Password is required."
	}
	if len(view.Errors) > 0 {
		pd := newPageData(r, "Login", "Sign in to your Motorline account.")
		pd.Data = view
		renderPage(w, r, "login", http.StatusUnprocessableEntity, pd)
		return
	}

	sess, err := a.svc.Login(r.Context(), view.Email, password)
	if err != nil {
		a.log.Info("login rejected", zap.String("email", view.Email), zap.Error(err))
		view.Errors["general"] = loginErrorMessage(err)
		pd := newPageData(r, "Login", "Sign in to your Motorline account.")
		pd.Data = view
		renderPage(w, r, "login", http.StatusUnprocessableEntity, pd)
		return
	}

	userID := sess.UserID
	if userID == "" {
		// Some backend versions omit the user object; fall back to the token claims.
		if id, err := authn.UserIDFromToken(sess.Token); err == nil {
			userID = id
		}
	}
	if userID == "" {
		view.Errors["general"] = "Login succeeded but no user identity was returned."
		pd := newPageData(r, "Login", "Sign in to your Motorline account.")
		pd.Data = view
		renderPage(w, r, "login", http.StatusBadGateway, pd)
		return
	}

	mw.GetSession(r).SignIn(userID, sess.Token)
	http.Redirect(w, r, "/cars", http.StatusSeeOther)
}

func (a *app) logoutHandler(w http.ResponseWriter, r *http.Request) {
	mw.GetSession(r).SignOut()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func loginErrorMessage(err error) string {
	var apiErr *marketplace.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest {
			return "Invalid email or password."
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
	}
	return "Login failed. Please try again."
}

// registerView is the registration page view model.
type registerView struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	PhoneNo   string
	Errors    map[string]string
}

func (v *registerView) validate(password string) {
	if v.Username == "" {
		v.Errors["username"] = "Username is required."
	}
	if v.FirstName == "" {
		v.Errors["firstName"] = "First name is required."
	}
	if v.LastName == "" {
		v.Errors["lastName"] = "Last name is required."
	}
	if !emailRe.MatchString(v.Email) {
		v.Errors["email"] = "Enter a valid email address."
	}
	if len(password) < 6 {
		v.Errors["password"] = "Password must be at least 6 characters."
	}
	if !phoneRe.MatchString(v.PhoneNo) {
		v.Errors["phoneNo"] = "Enter a 10-digit phone number."
	}
}

func (a *app) registerFormHandler(w http.ResponseWriter, r *http.Request) {
	pd := newPageData(r, "Create account", "Join Motorline to sell cars and book test drives.")
	pd.Data = registerView{Errors: map[string]string{}}
	renderPage(w, r, "register", http.StatusOK, pd)
}

func (a *app) registerHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := registerView{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		FirstName: strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:  strings.TrimSpace(r.PostFormValue("lastName")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		PhoneNo:   strings.TrimSpace(r.PostFormValue("phoneNo")),
		Errors:    map[string]string{},
	}
	password := r.PostFormValue("password")
	view.validate(password)
	if len(view.Errors) > 0 {
		pd := newPageData(r, "Create account", "Join Motorline to sell cars and book test drives.")
		pd.Data = view
		renderPage(w, r, "register", http.StatusUnprocessableEntity, pd)
		return
	}

	reg := marketplace.Registration{
		Username:  view.Username,
		FirstName: view.FirstName,
		LastName:  view.LastName,
		Email:     view.Email,
		Password:  password,
		PhoneNo:   view.PhoneNo,
	}
	if err := a.svc.Register(r.Context(), reg); err != nil {
		a.log.Info("registration rejected", zap.String("email", view.Email), zap.Error(err))
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			view.Errors["general"] = apiErr.Detail
		} else {
			view.Errors["general"] = "Registration failed. Please try again."
		}
		pd := newPageData(r, "Create account", "Join Motorline to sell cars and book test drives.")
		pd.Data = view
		renderPage(w, r, "register", http.StatusUnprocessableEntity, pd)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
