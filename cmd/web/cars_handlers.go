package main

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"motorline.org/motorline-web/internal/gallery"
	"motorline.org/motorline-web/internal/marketplace"
	mw "motorline.org/motorline-web/internal/middleware"
	"motorline.org/motorline-web/internal/seo"
)

const maxUploadBytes = 10 << 20

// homeHandler renders the landing page with a few recent listings.
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	token := requestToken(r)
	view := carsView{}
	cars, err := a.svc.ListCars(r.Context(), token)
	if err != nil {
		a.log.Warn("home listings", zap.Error(err))
	} else {
		if len(cars) > 3 {
			cars = cars[:3]
		}
		listings, err := a.newEnricher(token).Enrich(r.Context(), cars)
		if err != nil {
			return // request cancelled
		}
		view.Listings = toListingCards(listings, requestUserID(r))
	}

	pd := newPageData(r, "Find your next car", "Motorline is a marketplace for buying and selling cars, with test drives you can book online.")
	pd.Data = view
	renderPage(w, r, "home", http.StatusOK, pd)
}

// carsHandler renders the browse page: every listing with its image tiles.
func (a *app) carsHandler(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)
	view := carsView{}

	cars, err := a.svc.ListCars(r.Context(), token)
	if err != nil {
		a.log.Warn("list cars", zap.Error(err))
		view.LoadError = "Listings are unavailable right now. Please try again shortly."
	} else {
		listings, err := a.newEnricher(token).Enrich(r.Context(), cars)
		if err != nil {
			return // request cancelled
		}
		view.Listings = toListingCards(listings, requestUserID(r))
	}

	pd := newPageData(r, "Browse cars", "Every car on Motorline, with photos and prices.")
	pd.Data = view
	renderPage(w, r, "cars", http.StatusOK, pd)
}

func (a *app) carDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	token := requestToken(r)
	car, err := a.svc.Car(r.Context(), token, id)
	if err != nil {
		a.carError(w, r, err, "car detail")
		return
	}

	view := carDetailView{Car: *car}
	images, err := a.svc.CarImages(r.Context(), token, car.SellerID, car.ID)
	if err != nil {
		a.log.Warn("car images", zap.Int64("car_id", car.ID), zap.Error(err))
		view.ImagesError = "Photos could not be loaded."
	}
	view.Images = images
	view.Tiles = gallery.Tiles(images)

	if u := mw.UserFromContext(r.Context()); u != nil {
		view.Owned = ownedBy(u.ID, *car)
		view.CanUpload = view.Owned && len(images) < gallery.TileCount
	}

	imageURL := ""
	if len(images) > 0 {
		imageURL = images[0]
	}
	name := fmt.Sprintf("%s %s (%d)", car.Make, car.Model, car.Year)
	view.JSONLD = template.JS(seo.JSON(seo.Vehicle(name, car.Description, absoluteURL(r), imageURL, car.Make, car.Model, car.Year, string(car.Price), string(car.Condition))))

	pd := newPageData(r, name, "Listing details, photos and test drive booking for "+name+".")
	pd.Data = view
	renderPage(w, r, "car_detail", http.StatusOK, pd)
}

func (a *app) carNewFormHandler(w http.ResponseWriter, r *http.Request) {
	pd := newPageData(r, "Sell your car", "List a car for sale on Motorline.")
	pd.Data = newCarFormView()
	renderPage(w, r, "car_new", http.StatusOK, pd)
}

func (a *app) carNewHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sellerID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		http.Error(w, "invalid session identity", http.StatusForbidden)
		return
	}

	view := newCarFormView()
	view.Make = strings.TrimSpace(r.PostFormValue("make"))
	view.Model = strings.TrimSpace(r.PostFormValue("model"))
	view.Year = strings.TrimSpace(r.PostFormValue("year"))
	view.Price = strings.TrimSpace(r.PostFormValue("price"))
	view.Condition = r.PostFormValue("condition")
	view.Description = r.PostFormValue("description")

	listing, ok := view.validate(sellerID)
	if !ok {
		pd := newPageData(r, "Sell your car", "List a car for sale on Motorline.")
		pd.Data = view
		renderPage(w, r, "car_new", http.StatusUnprocessableEntity, pd)
		return
	}

	created, err := a.svc.CreateCar(r.Context(), u.Token, listing)
	if err != nil {
		a.log.Warn("create car", zap.Error(err))
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			view.Errors["general"] = apiErr.Detail
		} else {
			view.Errors["general"] = "The listing could not be created. Please try again."
		}
		pd := newPageData(r, "Sell your car", "List a car for sale on Motorline.")
		pd.Data = view
		renderPage(w, r, "car_new", http.StatusUnprocessableEntity, pd)
		return
	}

	if created != nil && created.ID > 0 {
		http.Redirect(w, r, fmt.Sprintf("/cars/%d", created.ID), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/cars/mine", http.StatusSeeOther)
}

// sellerCarsHandler renders the signed-in user's own listings.
func (a *app) sellerCarsHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	sellerID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		http.Error(w, "invalid session identity", http.StatusForbidden)
		return
	}

	view := carsView{}
	cars, err := a.svc.SellerCars(r.Context(), u.Token, sellerID)
	if err != nil {
		a.log.Warn("seller cars", zap.Error(err))
		view.LoadError = "Your listings are unavailable right now."
	} else {
		listings, err := a.newEnricher(u.Token).Enrich(r.Context(), cars)
		if err != nil {
			return
		}
		view.Listings = toListingCards(listings, u.ID)
		view.CSRFToken = mw.CSRFToken(r)
	}

	pd := newPageData(r, "My cars", "The cars you have listed for sale.")
	pd.Data = view
	renderPage(w, r, "seller_cars", http.StatusOK, pd)
}

func (a *app) carImageUploadHandler(w http.ResponseWriter, r *http.Request) {
	u := mw.UserFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	car, err := a.svc.Car(r.Context(), u.Token, id)
	if err != nil {
		a.carError(w, r, err, "upload target")
		return
	}
	if !ownedBy(u.ID, *car) {
		http.Error(w, "you can only add photos to your own listings", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "choose an image file", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if err := a.svc.UploadCarImage(r.Context(), u.Token, car.ID, header.Filename, file); err != nil {
		a.log.Warn("upload image", zap.Int64("car_id", car.ID), zap.Error(err))
		http.Error(w, "the photo could not be uploaded", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/cars/%d", car.ID), http.StatusSeeOther)
}

// carError maps a backend failure on a single-car fetch to a response.
func (a *app) carError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var apiErr *marketplace.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		http.NotFound(w, r)
		return
	}
	a.log.Warn(op, zap.Error(err))
	http.Error(w, "the listing could not be loaded", http.StatusBadGateway)
}
