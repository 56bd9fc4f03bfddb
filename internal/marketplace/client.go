package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Service is the data-access surface the web frontend consumes. One shared
// implementation backs every page so the listing and seller pages cannot
// drift apart.
type Service interface {
	ListCars(ctx context.Context, token string) ([]Car, error)
	SellerCars(ctx context.Context, token string, sellerID int64) ([]Car, error)
	Car(ctx context.Context, token string, carID int64) (*Car, error)
	CarImages(ctx context.Context, token string, sellerID, carID int64) ([]string, error)
	CreateCar(ctx context.Context, token string, car NewCar) (*Car, error)
	UploadCarImage(ctx context.Context, token string, carID int64, filename string, file io.Reader) error

	CreateTestDrive(ctx context.Context, token string, drive TestDrive) (*TestDrive, error)
	ListTestDrives(ctx context.Context, token string) ([]TestDrive, error)
	UserTestDrives(ctx context.Context, token string, userID int64) ([]TestDrive, error)
	UpdateTestDriveStatus(ctx context.Context, token string, userID, vehicleID int64, status TestDriveStatus) (*TestDrive, error)

	Login(ctx context.Context, email, password string) (*AuthSession, error)
	Register(ctx context.Context, reg Registration) error
}

// APIError is a backend rejection. Detail carries the server-provided
// message, unwrapped from the response body in `detail`, `message`, raw-body
// preference order.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("marketplace: backend error (%d): %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("marketplace: backend error (%d): %s", e.Status, e.Detail)
}

// Endpoints addresses the three backend services. Deployments may run cars,
// test drives and users on separate origins; DrivesBaseURL and UsersBaseURL
// default to CarsBaseURL when left empty.
type Endpoints struct {
	CarsBaseURL   string
	DrivesBaseURL string
	UsersBaseURL  string
}

func (e Endpoints) normalized() Endpoints {
	e.CarsBaseURL = strings.TrimRight(strings.TrimSpace(e.CarsBaseURL), "/")
	e.DrivesBaseURL = strings.TrimRight(strings.TrimSpace(e.DrivesBaseURL), "/")
	e.UsersBaseURL = strings.TrimRight(strings.TrimSpace(e.UsersBaseURL), "/")
	if e.DrivesBaseURL == "" {
		e.DrivesBaseURL = e.CarsBaseURL
	}
	if e.UsersBaseURL == "" {
		e.UsersBaseURL = e.CarsBaseURL
	}
	return e
}

// HTTPService implements Service against the REST backend.
type HTTPService struct {
	endpoints Endpoints
	client    HTTPClient
}

// NewHTTPService constructs a Service for the given backend endpoints.
func NewHTTPService(endpoints Endpoints, client HTTPClient) (*HTTPService, error) {
	endpoints = endpoints.normalized()
	if endpoints.CarsBaseURL == "" {
		return nil, errors.New("marketplace: cars base URL is required")
	}
	if _, err := url.Parse(endpoints.CarsBaseURL); err != nil {
		return nil, fmt.Errorf("marketplace: parse cars base URL: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPService{endpoints: endpoints, client: client}, nil
}

// ListCars fetches every marketplace listing.
func (s *HTTPService) ListCars(ctx context.Context, token string) ([]Car, error) {
	body, err := s.get(ctx, s.endpoints.CarsBaseURL+"/cars/addcars/", token)
	if err != nil {
		return nil, err
	}
	cars, _, err := DecodeCarList(body)
	return cars, err
}

// SellerCars fetches the listings owned by one seller.
func (s *HTTPService) SellerCars(ctx context.Context, token string, sellerID int64) ([]Car, error) {
	endpoint := fmt.Sprintf("%s/cars/getcars/%d", s.endpoints.CarsBaseURL, sellerID)
	body, err := s.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}
	cars, _, err := DecodeCarList(body)
	return cars, err
}

// Car fetches a single listing.
func (s *HTTPService) Car(ctx context.Context, token string, carID int64) (*Car, error) {
	endpoint := fmt.Sprintf("%s/cars/updatecar/%d", s.endpoints.CarsBaseURL, carID)
	body, err := s.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}
	var car Car
	if err := json.Unmarshal(body, &car); err != nil {
		return nil, fmt.Errorf("marketplace: decode car: %w", err)
	}
	return &car, nil
}

// CarImages fetches the image list for one car and resolves each ref to an
// absolute URL on the cars origin. Refs with no extractable URL are dropped.
func (s *HTTPService) CarImages(ctx context.Context, token string, sellerID, carID int64) ([]string, error) {
	endpoint := fmt.Sprintf("%s/cars/getusercarimages/%d/%d", s.endpoints.CarsBaseURL, sellerID, carID)
	body, err := s.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}
	refs, _, err := DecodeImageList(body)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if abs := AbsoluteURL(ImageSrc(ref), s.endpoints.CarsBaseURL); abs != "" {
			urls = append(urls, abs)
		}
	}
	return urls, nil
}

// CreateCar submits a new listing and returns the created record.
func (s *HTTPService) CreateCar(ctx context.Context, token string, car NewCar) (*Car, error) {
	req, err := s.newJSONRequest(ctx, http.MethodPost, s.endpoints.CarsBaseURL+"/cars/addcars/", car, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set(idempotencyHeader, uuid.NewString())
	body, err := s.roundTrip(req)
	if err != nil {
		return nil, err
	}
	var created Car
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("marketplace: decode created car: %w", err)
	}
	return &created, nil
}

// UploadCarImage attaches one image file to a listing via multipart form.
func (s *HTTPService) UploadCarImage(ctx context.Context, token string, carID int64, filename string, file io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("marketplace: build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("marketplace: read upload file: %w", err)
	}
	if err := mw.WriteField("car", strconv.FormatInt(carID, 10)); err != nil {
		return fmt.Errorf("marketplace: build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("marketplace: build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoints.CarsBaseURL+"/cars/addcarimages/", &buf)
	if err != nil {
		return fmt.Errorf("marketplace: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setAuth(req, token)
	_, err = s.roundTrip(req)
	return err
}

// CreateTestDrive books a test drive slot.
func (s *HTTPService) CreateTestDrive(ctx context.Context, token string, drive TestDrive) (*TestDrive, error) {
	req, err := s.newJSONRequest(ctx, http.MethodPost, s.endpoints.DrivesBaseURL+"/testdrive/test/", drive, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set(idempotencyHeader, uuid.NewString())
	body, err := s.roundTrip(req)
	if err != nil {
		return nil, err
	}
	var created TestDrive
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("marketplace: decode created booking: %w", err)
	}
	return &created, nil
}

// ListTestDrives fetches every booking visible to the caller.
func (s *HTTPService) ListTestDrives(ctx context.Context, token string) ([]TestDrive, error) {
	body, err := s.get(ctx, s.endpoints.DrivesBaseURL+"/testdrive/test", token)
	if err != nil {
		return nil, err
	}
	var drives []TestDrive
	if err := json.Unmarshal(body, &drives); err != nil {
		return nil, fmt.Errorf("marketplace: decode bookings: %w", err)
	}
	return drives, nil
}

// UserTestDrives fetches the bookings made by one user.
func (s *HTTPService) UserTestDrives(ctx context.Context, token string, userID int64) ([]TestDrive, error) {
	endpoint := fmt.Sprintf("%s/testdrive/getuserdrives/%d", s.endpoints.DrivesBaseURL, userID)
	body, err := s.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}
	var drives []TestDrive
	if err := json.Unmarshal(body, &drives); err != nil {
		return nil, fmt.Errorf("marketplace: decode bookings: %w", err)
	}
	return drives, nil
}

// UpdateTestDriveStatus moves one booking to a new state.
func (s *HTTPService) UpdateTestDriveStatus(ctx context.Context, token string, userID, vehicleID int64, status TestDriveStatus) (*TestDrive, error) {
	endpoint := fmt.Sprintf("%s/testdrive/getdrives/%d/%d", s.endpoints.DrivesBaseURL, userID, vehicleID)
	payload := map[string]TestDriveStatus{"status": status}
	req, err := s.newJSONRequest(ctx, http.MethodPut, endpoint, payload, token)
	if err != nil {
		return nil, err
	}
	body, err := s.roundTrip(req)
	if err != nil {
		return nil, err
	}
	var updated TestDrive
	if err := json.Unmarshal(body, &updated); err != nil {
		// Some deployments answer with a bare message; the caller only
		// needs success, so tolerate a non-record body.
		return &TestDrive{UserID: userID, VehicleID: vehicleID, Status: status}, nil
	}
	return &updated, nil
}

// loginResponse mirrors the users service login payload.
type loginResponse struct {
	Access string `json:"access"`
	User   struct {
		ID json.Number `json:"id"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token and user identifier.
func (s *HTTPService) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	payload := map[string]string{"email": email, "password": password}
	req, err := s.newJSONRequest(ctx, http.MethodPost, s.endpoints.UsersBaseURL+"/users/login/", payload, "")
	if err != nil {
		return nil, err
	}
	body, err := s.roundTrip(req)
	if err != nil {
		return nil, err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("marketplace: decode login response: %w", err)
	}
	if resp.Access == "" {
		return nil, errors.New("marketplace: login response missing access token")
	}
	return &AuthSession{Token: resp.Access, UserID: resp.User.ID.String()}, nil
}

// Register creates a user account.
func (s *HTTPService) Register(ctx context.Context, reg Registration) error {
	req, err := s.newJSONRequest(ctx, http.MethodPost, s.endpoints.UsersBaseURL+"/users/alloper/", reg, "")
	if err != nil {
		return err
	}
	_, err = s.roundTrip(req)
	return err
}

func (s *HTTPService) get(ctx context.Context, endpoint, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("marketplace: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	setAuth(req, token)
	return s.roundTrip(req)
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("marketplace: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("marketplace: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setAuth(req, token)
	return req, nil
}

func (s *HTTPService) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("marketplace: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Detail: detailFromBody(body)}
	}
	return body, nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// detailFromBody unwraps a backend error body: `detail`, then `message`, then
// the raw body.
func detailFromBody(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
