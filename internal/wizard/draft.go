// Package wizard implements the property-submission workflow as an explicit
// state machine: a draft mutated only through named transitions, a step
// controller gating advancement, and an OTP-gated submit path.
package wizard

import (
	"fmt"
	"math"

	"estate-listing-backend/internal/catalog"
)

// priceSource identifies which of the two price fields the user edited most
// recently. Per-unit price is the default primary: editing area recomputes
// total from it. A direct edit of totalPrice flips the primary until the
// per-unit field is next edited.
type priceSource int

const (
	sourcePricePerUnit priceSource = iota
	sourceTotalPrice
)

// Draft is the in-progress property submission.
type Draft struct {
	UserType         catalog.UserType         `json:"user_type"`
	PropertyCategory catalog.PropertyCategory `json:"property_category"`
	PropertyType     catalog.PropertyType     `json:"property_type"`
	TransactionType  catalog.TransactionType  `json:"transaction_type"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	City        string `json:"city"`
	Pincode     string `json:"pincode"`
	Landmarks   string `json:"landmarks"`

	Area         float64          `json:"area"`
	AreaUnit     catalog.AreaUnit `json:"area_unit"`
	Price        float64          `json:"price"`
	PricePerUnit float64          `json:"price_per_unit"`
	TotalPrice   float64          `json:"total_price"`

	Bedrooms    int `json:"bedrooms"`
	Bathrooms   int `json:"bathrooms"`
	Balconies   int `json:"balconies"`
	Floor       int `json:"floor"`
	TotalFloors int `json:"total_floors"`

	Amenities []string `json:"amenities"`

	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`

	IsUrgentSale      bool `json:"is_urgent_sale"`
	WhatsappEnabled   bool `json:"whatsapp_enabled"`
	NoBrokerResponses bool `json:"no_broker_responses"`

	lastPriceEdited priceSource
}

// NewDraft creates an empty draft, pre-filled from the authenticated user's
// profile when available.
func NewDraft(contactName, contactPhone, contactEmail string) *Draft {
	return &Draft{
		AreaUnit:     catalog.UnitSqft,
		ContactName:  contactName,
		ContactPhone: contactPhone,
		ContactEmail: contactEmail,
	}
}

// Set applies a single field edit by name. Numeric values arrive as float64
// (JSON numbers); booleans and strings pass through. Edits to area or the
// price pair run the derived-field recomputation.
func (d *Draft) Set(field string, value any) error {
	switch field {
	case "user_type":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if d.UserType != catalog.UserType(s) {
			d.UserType = catalog.UserType(s)
			// Transaction availability depends on user type.
			d.TransactionType = ""
		}
	case "property_category":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if d.PropertyCategory != catalog.PropertyCategory(s) {
			d.PropertyCategory = catalog.PropertyCategory(s)
			d.PropertyType = ""
			d.TransactionType = ""
		}
	case "property_type":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if d.PropertyType != catalog.PropertyType(s) {
			d.PropertyType = catalog.PropertyType(s)
			d.TransactionType = ""
		}
	case "transaction_type":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		d.TransactionType = catalog.TransactionType(s)
	case "title":
		return setString(&d.Title, field, value)
	case "description":
		return setString(&d.Description, field, value)
	case "location":
		return setString(&d.Location, field, value)
	case "city":
		return setString(&d.City, field, value)
	case "pincode":
		return setString(&d.Pincode, field, value)
	case "landmarks":
		return setString(&d.Landmarks, field, value)
	case "area":
		n, err := asNumber(field, value)
		if err != nil {
			return err
		}
		d.Area = n
		d.recomputeFromArea()
	case "area_unit":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		d.AreaUnit = catalog.AreaUnit(s)
	case "price_per_unit":
		n, err := asNumber(field, value)
		if err != nil {
			return err
		}
		d.PricePerUnit = n
		d.lastPriceEdited = sourcePricePerUnit
		if d.Area > 0 {
			d.TotalPrice = math.Round(d.PricePerUnit * d.Area)
			d.Price = d.TotalPrice
		}
	case "total_price":
		n, err := asNumber(field, value)
		if err != nil {
			return err
		}
		d.TotalPrice = n
		d.lastPriceEdited = sourceTotalPrice
		d.Price = d.TotalPrice
		if d.Area > 0 {
			d.PricePerUnit = math.Round(d.TotalPrice / d.Area)
		}
	case "bedrooms":
		return setInt(&d.Bedrooms, field, value)
	case "bathrooms":
		return setInt(&d.Bathrooms, field, value)
	case "balconies":
		return setInt(&d.Balconies, field, value)
	case "floor":
		return setInt(&d.Floor, field, value)
	case "total_floors":
		return setInt(&d.TotalFloors, field, value)
	case "amenities":
		list, err := asStringList(field, value)
		if err != nil {
			return err
		}
		d.Amenities = list
	case "contact_name":
		return setString(&d.ContactName, field, value)
	case "contact_phone":
		return setString(&d.ContactPhone, field, value)
	case "contact_email":
		return setString(&d.ContactEmail, field, value)
	case "is_urgent_sale":
		return setBool(&d.IsUrgentSale, field, value)
	case "whatsapp_enabled":
		return setBool(&d.WhatsappEnabled, field, value)
	case "no_broker_responses":
		return setBool(&d.NoBrokerResponses, field, value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// recomputeFromArea re-derives the non-primary price member after an area
// edit. No recomputation happens while area is zero or either source is
// unset.
func (d *Draft) recomputeFromArea() {
	if d.Area <= 0 {
		return
	}
	if d.lastPriceEdited == sourceTotalPrice && d.TotalPrice > 0 {
		d.PricePerUnit = math.Round(d.TotalPrice / d.Area)
		d.Price = d.TotalPrice
		return
	}
	if d.PricePerUnit > 0 {
		d.TotalPrice = math.Round(d.PricePerUnit * d.Area)
		d.Price = d.TotalPrice
	}
}

func asString(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q expects a string", field)
	}
	return s, nil
}

func asNumber(field string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("field %q expects a number", field)
}

func asStringList(field string, value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %q expects a list of strings", field)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("field %q expects a list of strings", field)
}

func setString(dst *string, field string, value any) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func setInt(dst *int, field string, value any) error {
	n, err := asNumber(field, value)
	if err != nil {
		return err
	}
	*dst = int(n)
	return nil
}

func setBool(dst *bool, field string, value any) error {
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("field %q expects a boolean", field)
	}
	*dst = b
	return nil
}
