package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"motorline.org/motorline-web/internal/marketplace"
	mw "motorline.org/motorline-web/internal/middleware"
	"motorline.org/motorline-web/internal/slots"
)

func (a *app) bookingFormHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	car, err := a.svc.Car(r.Context(), u.Token, id)
	if err != nil {
		a.carError(w, r, err, "booking target")
		return
	}

	pd := newPageData(r, "Book a test drive", "Pick a 30-minute test drive slot.")
	pd.Data = newBookingView(*car, time.Now())
	renderPage(w, r, "booking_new", http.StatusOK, pd)
}

func (a *app) bookingHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	car, err := a.svc.Car(r.Context(), u.Token, id)
	if err != nil {
		a.carError(w, r, err, "booking target")
		return
	}
	userID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		http.Error(w, "invalid session identity", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	now := time.Now()
	view := newBookingView(*car, now)
	raw := r.PostFormValue("scheduled_date")
	when, msg := validateSlot(raw, now)
	if msg != "" {
		view.Selected = raw
		view.Errors["scheduled_date"] = msg
		pd := newPageData(r, "Book a test drive", "Pick a 30-minute test drive slot.")
		pd.Data = view
		renderPage(w, r, "booking_new", http.StatusUnprocessableEntity, pd)
		return
	}

	booked, err := a.svc.CreateTestDrive(r.Context(), u.Token, marketplace.TestDrive{
		UserID:        userID,
		VehicleID:     car.ID,
		SellerID:      car.SellerID,
		ScheduledDate: slots.FormatLocal(when),
		Status:        marketplace.StatusPending,
	})
	if err != nil {
		a.log.Warn("create test drive", zap.Int64("car_id", car.ID), zap.Error(err))
		view.Selected = raw
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			view.Errors["general"] = apiErr.Detail
		} else {
			view.Errors["general"] = "The booking could not be placed. Please try again."
		}
		pd := newPageData(r, "Book a test drive", "Pick a 30-minute test drive slot.")
		pd.Data = view
		renderPage(w, r, "booking_new", http.StatusUnprocessableEntity, pd)
		return
	}

	view.Success = true
	view.Booked = booked
	if view.Booked == nil {
		// backends that return no record still booked the slot
		view.Booked = &marketplace.TestDrive{
			UserID:        userID,
			VehicleID:     car.ID,
			SellerID:      car.SellerID,
			ScheduledDate: slots.FormatLocal(when),
			Status:        marketplace.StatusPending,
		}
	}
	pd := newPageData(r, "Test drive booked", "Your test drive is booked.")
	pd.Data = view
	renderPage(w, r, "booking_new", http.StatusOK, pd)
}
