package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"estate-listing-backend/internal/catalog"
)

const (
	FirstStep = 1
	LastStep  = 4

	titleMinLen       = 10
	titleMaxLen       = 100
	descriptionMaxLen = 2000
	maxRoomCount      = 20
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	phonePattern   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// FieldErrors maps field name to a user-facing validation message.
type FieldErrors map[string]string

// ValidateStep checks only the field subset declared for one step. Steps
// validate forward progress; going backward never validates.
func ValidateStep(d *Draft, step int) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case 1:
		validateClassification(d, errs)
		validateBasics(d, errs)
	case 2:
		validateLocation(d, errs)
	case 3:
		// Media staging is gated by the upload tracker, not the schema.
	case 4:
		validateContact(d, errs)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateAll runs every step's subset; used before final dispatch.
func ValidateAll(d *Draft) FieldErrors {
	errs := FieldErrors{}
	validateClassification(d, errs)
	validateBasics(d, errs)
	validateLocation(d, errs)
	validateContact(d, errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateClassification(d *Draft, errs FieldErrors) {
	if !catalog.ValidUserType(d.UserType) {
		errs["user_type"] = "select who you are: owner, agent or builder"
	}
	if !catalog.ValidCategory(d.PropertyCategory) {
		errs["property_category"] = "select a property category"
		return
	}
	if d.PropertyType == "" {
		errs["property_type"] = "select a property type"
		return
	}
	if !catalog.ValidType(d.PropertyCategory, d.PropertyType) {
		errs["property_type"] = fmt.Sprintf("%s is not a %s property type", d.PropertyType, d.PropertyCategory)
		return
	}
	if d.TransactionType == "" {
		errs["transaction_type"] = "select a transaction type"
	} else if catalog.ValidUserType(d.UserType) && !catalog.ValidTransaction(d.UserType, d.PropertyType, d.TransactionType) {
		errs["transaction_type"] = fmt.Sprintf("%s is not available for this listing", d.TransactionType)
	}
}

func validateBasics(d *Draft, errs FieldErrors) {
	title := strings.TrimSpace(d.Title)
	if len(title) < titleMinLen {
		errs["title"] = fmt.Sprintf("title must be at least %d characters", titleMinLen)
	} else if len(title) > titleMaxLen {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", titleMaxLen)
	}
	if len(d.Description) > descriptionMaxLen {
		errs["description"] = fmt.Sprintf("description must be at most %d characters", descriptionMaxLen)
	}
	if d.Area <= 0 {
		errs["area"] = "area must be greater than zero"
	}
	if !catalog.ValidAreaUnit(d.AreaUnit) {
		errs["area_unit"] = "select an area unit"
	}
	if d.PricePerUnit < 0 {
		errs["price_per_unit"] = "price per unit cannot be negative"
	}
	if d.TotalPrice <= 0 {
		errs["total_price"] = "expected price is required"
	}
	if d.Bedrooms < 0 || d.Bedrooms > maxRoomCount {
		errs["bedrooms"] = fmt.Sprintf("bedrooms must be between 0 and %d", maxRoomCount)
	}
	if d.Bathrooms < 0 || d.Bathrooms > maxRoomCount {
		errs["bathrooms"] = fmt.Sprintf("bathrooms must be between 0 and %d", maxRoomCount)
	}
	if d.Balconies < 0 || d.Balconies > maxRoomCount {
		errs["balconies"] = fmt.Sprintf("balconies must be between 0 and %d", maxRoomCount)
	}
}

func validateLocation(d *Draft, errs FieldErrors) {
	if strings.TrimSpace(d.City) == "" {
		errs["city"] = "city is required"
	}
	if strings.TrimSpace(d.Location) == "" {
		errs["location"] = "locality is required"
	}
	if !pincodePattern.MatchString(d.Pincode) {
		errs["pincode"] = "pincode must be 6 digits"
	}
	if d.TotalFloors > 0 && d.Floor > d.TotalFloors {
		errs["floor"] = "floor cannot exceed total floors"
	}
	if d.Floor < 0 || d.TotalFloors < 0 {
		errs["floor"] = "floor values cannot be negative"
	}
}

func validateContact(d *Draft, errs FieldErrors) {
	if strings.TrimSpace(d.ContactName) == "" {
		errs["contact_name"] = "contact name is required"
	}
	if !phonePattern.MatchString(d.ContactPhone) {
		errs["contact_phone"] = "phone must be a 10 digit mobile number"
	}
	if !emailPattern.MatchString(d.ContactEmail) {
		errs["contact_email"] = "a valid email is required"
	}
}
