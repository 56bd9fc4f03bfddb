package marketplace

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// StaticService implements Service with seeded in-memory data. It backs local
// development and handler tests when no backend is configured.
type StaticService struct {
	mu     sync.Mutex
	cars   []Car
	images map[int64][]string
	drives []TestDrive
	nextID int64
}

// NewStaticService seeds a small believable marketplace.
func NewStaticService() *StaticService {
	return &StaticService{
		cars: []Car{
			{ID: 1, Make: "Tata", Model: "Nexon EV", Year: 2022, Price: "1450000.00", Condition: ConditionNew, Description: "Company fitted fast charger, single owner.", SellerID: 7},
			{ID: 2, Make: "Maruti", Model: "Swift", Year: 2019, Price: "550000.00", Condition: ConditionUsed, Description: "Serviced on schedule, new tyres, no accidents.", SellerID: 7},
			{ID: 3, Make: "Hyundai", Model: "Creta", Year: 2021, Price: "1250000.00", Condition: ConditionUsed, Description: "Top trim with sunroof.", SellerID: 9},
		},
		images: map[int64][]string{
			1: {"https://cdn.example.com/cars/1/front.jpg", "https://cdn.example.com/cars/1/side.jpg"},
			2: {"https://cdn.example.com/cars/2/front.jpg"},
		},
		drives: []TestDrive{
			{ID: 1, UserID: 4, VehicleID: 1, SellerID: 7, ScheduledDate: "2025-06-12T10:30", Status: StatusPending},
		},
		nextID: 100,
	}
}

// ListCars returns every seeded listing.
func (s *StaticService) ListCars(ctx context.Context, token string) ([]Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Car, len(s.cars))
	copy(out, s.cars)
	return out, nil
}

// SellerCars returns the listings owned by sellerID.
func (s *StaticService) SellerCars(ctx context.Context, token string, sellerID int64) ([]Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Car
	for _, c := range s.cars {
		if c.SellerID == sellerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Car returns one listing by ID.
func (s *StaticService) Car(ctx context.Context, token string, carID int64) (*Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cars {
		if c.ID == carID {
			out := c
			return &out, nil
		}
	}
	return nil, &APIError{Status: 404, Detail: fmt.Sprintf("car %d not found", carID)}
}

// CarImages returns the seeded image URLs for one car.
func (s *StaticService) CarImages(ctx context.Context, token string, sellerID, carID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.images[carID]))
	copy(out, s.images[carID])
	return out, nil
}

// CreateCar appends a listing and assigns an ID.
func (s *StaticService) CreateCar(ctx context.Context, token string, car NewCar) (*Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	created := Car{
		ID:          s.nextID,
		Make:        car.Make,
		Model:       car.Model,
		Year:        car.Year,
		Price:       car.Price,
		Condition:   car.Condition,
		Description: car.Description,
		SellerID:    car.SellerID,
	}
	s.cars = append(s.cars, created)
	return &created, nil
}

// UploadCarImage records a fake URL for the uploaded file.
func (s *StaticService) UploadCarImage(ctx context.Context, token string, carID int64, filename string, file io.Reader) error {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[carID] = append(s.images[carID], "https://cdn.example.com/cars/"+strconv.FormatInt(carID, 10)+"/"+filename)
	return nil
}

// CreateTestDrive appends a booking and assigns an ID.
func (s *StaticService) CreateTestDrive(ctx context.Context, token string, drive TestDrive) (*TestDrive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	drive.ID = s.nextID
	if drive.Status == "" {
		drive.Status = StatusPending
	}
	s.drives = append(s.drives, drive)
	out := drive
	return &out, nil
}

// ListTestDrives returns every booking.
func (s *StaticService) ListTestDrives(ctx context.Context, token string) ([]TestDrive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TestDrive, len(s.drives))
	copy(out, s.drives)
	return out, nil
}

// UserTestDrives returns the bookings made by userID.
func (s *StaticService) UserTestDrives(ctx context.Context, token string, userID int64) ([]TestDrive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TestDrive
	for _, d := range s.drives {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// UpdateTestDriveStatus moves a booking to a new state.
func (s *StaticService) UpdateTestDriveStatus(ctx context.Context, token string, userID, vehicleID int64, status TestDriveStatus) (*TestDrive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drives {
		if s.drives[i].UserID == userID && s.drives[i].VehicleID == vehicleID {
			s.drives[i].Status = status
			out := s.drives[i]
			return &out, nil
		}
	}
	return nil, &APIError{Status: 404, Detail: "booking not found"}
}

// Login accepts any non-empty credentials and signs in as user 7.
func (s *StaticService) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	if email == "" || password == "" {
		return nil, &APIError{Status: 400, Detail: "email and password required"}
	}
	return &AuthSession{Token: "static-demo-token", UserID: "7"}, nil
}

// Register accepts every registration.
func (s *StaticService) Register(ctx context.Context, reg Registration) error {
	return nil
}
