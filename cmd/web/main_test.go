package main

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"motorline.org/motorline-web/internal/config"
	"motorline.org/motorline-web/internal/marketplace"
	"motorline.org/motorline-web/internal/slots"
)

var csrfRe = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	templatesDir = filepath.Join("..", "..", "templates")
	publicDir = filepath.Join("..", "..", "public")
	devMode = false
	tc, err := parseTemplates()
	require.NoError(t, err)
	tmplCache = tc

	cfg := config.Default()
	a := &app{cfg: cfg, log: zap.NewNop(), svc: marketplace.NewStaticService()}
	srv := httptest.NewServer(newRouter(a))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// getPage fetches a page and returns its body plus the embedded CSRF token.
func getPage(t *testing.T, c *http.Client, url string) (string, string) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body := readBody(t, resp)
	m := csrfRe.FindStringSubmatch(body)
	token := ""
	if len(m) == 2 {
		token = m[1]
	}
	return body, token
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}

// signIn walks the login form with the static backend's permissive auth.
func signIn(t *testing.T, c *http.Client, base string) {
	t.Helper()
	_, token := getPage(t, c, base+"/login")
	require.NotEmpty(t, token)
	resp, err := c.PostForm(base+"/login", url.Values{
		"csrf_token": {token},
		"email":      {"demo@example.com"},
		"password":   {"password"},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "/cars", resp.Request.URL.Path)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHomeRenders(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	body, _ := getPage(t, c, srv.URL+"/")
	assert.Contains(t, body, "Motorline")
	assert.Contains(t, body, "Browse cars")
}

func TestBrowseShowsSeededListings(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	body, _ := getPage(t, c, srv.URL+"/cars")
	assert.Contains(t, body, "Nexon EV")
	assert.Contains(t, body, "Swift")
	// prices use Indian digit grouping
	assert.Contains(t, body, "14,50,000.00")
}

func TestCarDetailRendersTilesAndMarkdown(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	body, _ := getPage(t, c, srv.URL+"/cars/1")
	assert.Contains(t, body, "Tata Nexon EV (2022)")
	// two real photos plus two placeholders make four tiles
	assert.Equal(t, 2, strings.Count(body, "tile-empty"))
	assert.Contains(t, body, "application/ld+json")
}

func TestCarDetailNotFound(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/cars/9999")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSellRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := c.Get(srv.URL + "/cars/new")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	// prime a session first
	_, _ = getPage(t, c, srv.URL+"/login")
	resp, err := c.PostForm(srv.URL+"/login", url.Values{
		"email":    {"demo@example.com"},
		"password": {"password"},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginValidation(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	_, token := getPage(t, c, srv.URL+"/login")
	resp, err := c.PostForm(srv.URL+"/login", url.Values{
		"csrf_token": {token},
		"email":      {""},
		"password":   {""},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Email is required.")
	assert.Contains(t, body, "Password is required.")
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	_, token := getPage(t, c, srv.URL+"/register")
	resp, err := c.PostForm(srv.URL+"/register", url.Values{
		"csrf_token": {token},
		"username":   {"driver1"},
		"firstName":  {"Asha"},
		"lastName":   {""},
		"email":      {"not-an-email"},
		"password":   {"123"},
		"phoneNo":    {"12345"},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Last name is required.")
	assert.Contains(t, body, "Enter a valid email address.")
	assert.Contains(t, body, "Password must be at least 6 characters.")
	assert.Contains(t, body, "Enter a 10-digit phone number.")
}

func TestBrowseHidesBookingOnOwnListings(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL) // static auth signs in as seller 7

	body, _ := getPage(t, c, srv.URL+"/cars")
	// seller 7 owns two of the three seeded cars
	assert.Equal(t, 1, strings.Count(body, "Book test drive"))
}

func TestSellerPageOffersUploadUnderTileCount(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	body, _ := getPage(t, c, srv.URL+"/cars/mine")
	// both seeded listings have fewer than four photos
	assert.Equal(t, 2, strings.Count(body, "Add photo"))
}

func TestSellFlowCreatesListing(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	_, token := getPage(t, c, srv.URL+"/cars/new")
	require.NotEmpty(t, token)
	resp, err := c.PostForm(srv.URL+"/cars/new", url.Values{
		"csrf_token":  {token},
		"make":        {"Honda"},
		"model":       {"City"},
		"year":        {"2022"},
		"price":       {"750000.00"},
		"condition":   {"Used"},
		"description": {"Well kept, **single owner**."},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := getPage(t, c, srv.URL+"/cars")
	assert.Contains(t, body, "Honda City (2022)")
	assert.Contains(t, body, "7,50,000.00")

	// the new listing also shows on the seller's own page
	mine, _ := getPage(t, c, srv.URL+"/cars/mine")
	assert.Contains(t, mine, "Honda City (2022)")
}

func TestSellValidation(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	_, token := getPage(t, c, srv.URL+"/cars/new")
	resp, err := c.PostForm(srv.URL+"/cars/new", url.Values{
		"csrf_token": {token},
		"make":       {""},
		"model":      {"City"},
		"year":       {"1850"},
		"price":      {"0"},
		"condition":  {"Wrecked"},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Make is required.")
	assert.Contains(t, body, "Enter a year between 1900 and 2100.")
	assert.Contains(t, body, "Enter a price greater than zero.")
	assert.Contains(t, body, "Pick New or Used.")
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	// seeded car 3 belongs to another seller, so booking is offered
	body, token := getPage(t, c, srv.URL+"/cars/3/testdrive")
	require.NotEmpty(t, token)
	assert.Contains(t, body, "datetime-local")
	assert.Contains(t, body, "between 09:00 and 19:00")

	slot := slots.FormatLocal(slots.Initial(time.Now()))
	resp, err := c.PostForm(srv.URL+"/cars/3/testdrive", url.Values{
		"csrf_token":     {token},
		"scheduled_date": {slot},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := readBody(t, resp)
	assert.Contains(t, out, "Test drive booked")

	drives, _ := getPage(t, c, srv.URL+"/testdrives")
	assert.Contains(t, drives, "Hyundai Creta (2021)")
	assert.Contains(t, drives, "Pending")
}

func TestBookingRejectsOffSlotTimes(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	_, token := getPage(t, c, srv.URL+"/cars/3/testdrive")
	tomorrow := time.Now().AddDate(0, 0, 1)
	offSlot := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 15, 0, 0, time.Local)
	resp, err := c.PostForm(srv.URL+"/cars/3/testdrive", url.Values{
		"csrf_token":     {token},
		"scheduled_date": {slots.FormatLocal(offSlot)},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "half hour")
}

func TestBookingRejectsOutOfHours(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	_, token := getPage(t, c, srv.URL+"/cars/3/testdrive")
	tomorrow := time.Now().AddDate(0, 0, 1)
	late := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 20, 0, 0, 0, time.Local)
	resp, err := c.PostForm(srv.URL+"/cars/3/testdrive", url.Values{
		"csrf_token":     {token},
		"scheduled_date": {slots.FormatLocal(late)},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "between 09:00 and 19:00")
}

func TestManageBookingsOwnerGate(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL) // static auth signs in as seller 7

	// the seeded booking targets seller 7's car, so it is listed
	body, token := getPage(t, c, srv.URL+"/testdrives/manage")
	assert.Contains(t, body, "Tata Nexon EV (2022)")

	// updating a booking on someone else's car is refused
	resp, err := c.PostForm(srv.URL+"/testdrives/manage", url.Values{
		"csrf_token": {token},
		"user_id":    {"4"},
		"vehicle_id": {"3"},
		"status":     {"Confirmed"},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestManageBookingsUpdatesStatus(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, c, srv.URL)

	_, token := getPage(t, c, srv.URL+"/testdrives/manage")
	resp, err := c.PostForm(srv.URL+"/testdrives/manage", url.Values{
		"csrf_token": {token},
		"user_id":    {"4"},
		"vehicle_id": {"1"},
		"status":     {"Confirmed"},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Booking updated.")
	assert.Contains(t, body, "Confirmed")
}
