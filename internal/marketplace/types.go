package marketplace

import (
	"encoding/json"
	"strings"
)

// Condition enumerates the listing condition values the backend accepts.
type Condition string

const (
	ConditionNew  Condition = "New"
	ConditionUsed Condition = "Used"
)

// ValidCondition reports whether c is one of the accepted values.
func ValidCondition(c Condition) bool {
	return c == ConditionNew || c == ConditionUsed
}

// TestDriveStatus enumerates booking states.
type TestDriveStatus string

const (
	StatusPending   TestDriveStatus = "Pending"
	StatusConfirmed TestDriveStatus = "Confirmed"
	StatusCancelled TestDriveStatus = "Cancelled"
)

// StatusOptions lists the states a seller can move a booking to.
var StatusOptions = []TestDriveStatus{StatusPending, StatusConfirmed, StatusCancelled}

// ValidStatus reports whether s is a known booking state.
func ValidStatus(s TestDriveStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Decimal is a decimal amount carried as a string. The backend is not
// consistent about emitting prices as JSON strings or numbers, so it accepts
// either on decode.
type Decimal string

func (d *Decimal) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Decimal(n.String())
	return nil
}

// Car is a marketplace listing as returned by the cars service.
type Car struct {
	ID          int64     `json:"id"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Price       Decimal   `json:"price"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	SellerID    int64     `json:"seller_id"`
	CreatedAt   string    `json:"created_at,omitempty"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
}

// NewCar is the payload for creating a listing.
type NewCar struct {
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Price       Decimal   `json:"price"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	SellerID    int64     `json:"seller_id"`
}

// TestDrive is a booking record owned by the drives service.
type TestDrive struct {
	ID            int64           `json:"id,omitempty"`
	UserID        int64           `json:"user_id"`
	VehicleID     int64           `json:"vehicle_id"`
	SellerID      int64           `json:"seller_id"`
	ScheduledDate string          `json:"scheduled_date"` // local minute-precision, YYYY-MM-DDTHH:MM
	Status        TestDriveStatus `json:"status"`
}

// Registration is the payload for creating a user account.
type Registration struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	PhoneNo   string `json:"phoneNo"`
}

// AuthSession is the result of a successful login: an opaque bearer token and
// the backend user identifier in canonical decimal-string form.
type AuthSession struct {
	Token  string
	UserID string
}
