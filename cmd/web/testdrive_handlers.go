package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"motorline.org/motorline-web/internal/marketplace"
	mw "motorline.org/motorline-web/internal/middleware"
)

// driveRow is one booking in a test-drive table.
type driveRow struct {
	marketplace.TestDrive
	CarLabel string
}

// testDrivesView backs the "my test drives" page.
type testDrivesView struct {
	Drives    []driveRow
	LoadError string
}

// manageView backs the seller's booking management page.
type manageView struct {
	Drives    []driveRow
	Statuses  []marketplace.TestDriveStatus
	Errors    map[string]string
	Updated   bool
	LoadError string
}

func (a *app) testDrivesHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	userID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		http.Error(w, "invalid session identity", http.StatusForbidden)
		return
	}

	view := testDrivesView{}
	drives, err := a.svc.UserTestDrives(r.Context(), u.Token, userID)
	if err != nil {
		a.log.Warn("user test drives", zap.Error(err))
		view.LoadError = "Your bookings are unavailable right now."
	} else {
		view.Drives = a.labelDrives(r, u.Token, drives)
	}

	pd := newPageData(r, "My test drives", "Test drives you have booked.")
	pd.Data = view
	renderPage(w, r, "my_testdrives", http.StatusOK, pd)
}

func (a *app) manageDrivesFormHandler(w http.ResponseWriter, r *http.Request) {
	a.renderManage(w, r, manageView{Errors: map[string]string{}}, http.StatusOK)
}

func (a *app) manageDrivesHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	driveUserID, err1 := strconv.ParseInt(r.PostFormValue("user_id"), 10, 64)
	vehicleID, err2 := strconv.ParseInt(r.PostFormValue("vehicle_id"), 10, 64)
	status := marketplace.TestDriveStatus(r.PostFormValue("status"))

	view := manageView{Errors: map[string]string{}}
	if err1 != nil || err2 != nil {
		view.Errors["general"] = "Pick a booking to update."
		a.renderManage(w, r, view, http.StatusUnprocessableEntity)
		return
	}
	if !marketplace.ValidStatus(status) {
		view.Errors["status"] = "Pick a valid status."
		a.renderManage(w, r, view, http.StatusUnprocessableEntity)
		return
	}

	// Only the seller of the booked car may change the booking.
	owned, err := a.sellerOwnsDrive(r, u, driveUserID, vehicleID)
	if err != nil {
		view.Errors["general"] = "Bookings are unavailable right now."
		a.renderManage(w, r, view, http.StatusBadGateway)
		return
	}
	if !owned {
		http.Error(w, "you can only manage bookings for your own listings", http.StatusForbidden)
		return
	}

	if _, err := a.svc.UpdateTestDriveStatus(r.Context(), u.Token, driveUserID, vehicleID, status); err != nil {
		a.log.Warn("update test drive", zap.Int64("vehicle_id", vehicleID), zap.Error(err))
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			view.Errors["general"] = apiErr.Detail
		} else {
			view.Errors["general"] = "The booking could not be updated."
		}
		a.renderManage(w, r, view, http.StatusUnprocessableEntity)
		return
	}

	view.Updated = true
	a.renderManage(w, r, view, http.StatusOK)
}

// renderManage loads the seller's incoming bookings and renders the page.
func (a *app) renderManage(w http.ResponseWriter, r *http.Request, view manageView, status int) {
	u := mw.UserFromContext(r.Context())
	view.Statuses = marketplace.StatusOptions

	drives, err := a.sellerDrives(r, u)
	if err != nil {
		a.log.Warn("seller drives", zap.Error(err))
		view.LoadError = "Incoming bookings are unavailable right now."
	} else {
		view.Drives = a.labelDrives(r, u.Token, drives)
	}

	pd := newPageData(r, "Manage bookings", "Confirm or cancel test drives booked on your cars.")
	pd.Data = view
	renderPage(w, r, "testdrive_status", status, pd)
}

// sellerDrives returns every booking placed against the user's listings.
func (a *app) sellerDrives(r *http.Request, u *mw.User) ([]marketplace.TestDrive, error) {
	sellerID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return nil, err
	}
	all, err := a.svc.ListTestDrives(r.Context(), u.Token)
	if err != nil {
		return nil, err
	}
	var mine []marketplace.TestDrive
	for _, d := range all {
		if d.SellerID == sellerID {
			mine = append(mine, d)
		}
	}
	return mine, nil
}

func (a *app) sellerOwnsDrive(r *http.Request, u *mw.User, driveUserID, vehicleID int64) (bool, error) {
	mine, err := a.sellerDrives(r, u)
	if err != nil {
		return false, err
	}
	for _, d := range mine {
		if d.UserID == driveUserID && d.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

// labelDrives resolves vehicle IDs to display labels, tolerating lookup
// failures with a plain ID label.
func (a *app) labelDrives(r *http.Request, token string, drives []marketplace.TestDrive) []driveRow {
	labels := map[int64]string{}
	if cars, err := a.svc.ListCars(r.Context(), token); err == nil {
		for _, c := range cars {
			labels[c.ID] = fmt.Sprintf("%s %s (%d)", c.Make, c.Model, c.Year)
		}
	}
	rows := make([]driveRow, 0, len(drives))
	for _, d := range drives {
		label := labels[d.VehicleID]
		if label == "" {
			label = fmt.Sprintf("Car #%d", d.VehicleID)
		}
		rows = append(rows, driveRow{TestDrive: d, CarLabel: label})
	}
	return rows
}
