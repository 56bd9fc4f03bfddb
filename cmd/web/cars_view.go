package main

import (
	"html/template"
	"regexp"
	"strconv"

	"motorline.org/motorline-web/internal/gallery"
	"motorline.org/motorline-web/internal/marketplace"
)

// listingCard is one car tile on the browse and seller pages.
type listingCard struct {
	marketplace.Car
	Tiles       []gallery.Tile
	ImagesError string
	Owned       bool
	Uploadable  bool // owner may add photos while under the tile count
}

// carsView backs the browse and seller pages. CSRFToken is set only where
// the cards render forms.
type carsView struct {
	Listings  []listingCard
	LoadError string
	CSRFToken string
}

// carDetailView backs the single-listing page.
type carDetailView struct {
	marketplace.Car
	Tiles       []gallery.Tile
	Images      []string
	ImagesError string
	Owned       bool
	CanUpload   bool
	JSONLD      template.JS
}

// carFormView backs the sell form; string fields echo raw input back.
type carFormView struct {
	Make        string
	Model       string
	Year        string
	Price       string
	Condition   string
	Description string
	Conditions  []marketplace.Condition
	Errors      map[string]string
}

func newCarFormView() carFormView {
	return carFormView{
		Condition:  string(marketplace.ConditionUsed),
		Conditions: []marketplace.Condition{marketplace.ConditionNew, marketplace.ConditionUsed},
		Errors:     map[string]string{},
	}
}

var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// validate fills Errors and returns the parsed listing when clean.
func (v *carFormView) validate(sellerID int64) (marketplace.NewCar, bool) {
	if v.Make == "" {
		v.Errors["make"] = "Make is required."
	}
	if v.Model == "" {
		v.Errors["model"] = "Model is required."
	}
	year, err := strconv.Atoi(v.Year)
	if err != nil || year < 1900 || year > 2100 {
		v.Errors["year"] = "Enter a year between 1900 and 2100."
	}
	if !priceRe.MatchString(v.Price) || allZero(v.Price) {
		v.Errors["price"] = "Enter a price greater than zero."
	}
	if !marketplace.ValidCondition(marketplace.Condition(v.Condition)) {
		v.Errors["condition"] = "Pick New or Used."
	}
	if len(v.Errors) > 0 {
		return marketplace.NewCar{}, false
	}
	return marketplace.NewCar{
		Make:        v.Make,
		Model:       v.Model,
		Year:        year,
		Price:       marketplace.Decimal(v.Price),
		Condition:   marketplace.Condition(v.Condition),
		Description: v.Description,
		SellerID:    sellerID,
	}, true
}

func allZero(price string) bool {
	for _, r := range price {
		if r >= '1' && r <= '9' {
			return false
		}
	}
	return true
}

func toListingCards(listings []gallery.Listing, userID string) []listingCard {
	cards := make([]listingCard, 0, len(listings))
	for _, l := range listings {
		owned := ownedBy(userID, l.Car)
		cards = append(cards, listingCard{
			Car:         l.Car,
			Tiles:       gallery.Tiles(l.Images),
			ImagesError: l.ImagesError,
			Owned:       owned,
			Uploadable:  owned && len(l.Images) < gallery.TileCount,
		})
	}
	return cards
}

// ownedBy reports whether the signed-in user (canonical decimal-string ID)
// owns the listing.
func ownedBy(userID string, car marketplace.Car) bool {
	return userID != "" && userID == strconv.FormatInt(car.SellerID, 10)
}
