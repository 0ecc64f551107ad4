package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"estate-listing-backend/internal/wizard"
)

func validDraft() *wizard.Draft {
	d := wizard.NewDraft("Asha Rao", "9876543210", "asha@example.com")
	for _, edit := range []struct {
		field string
		value any
	}{
		{"user_type", "owner"},
		{"property_category", "residential"},
		{"property_type", "flat-apartment"},
		{"transaction_type", "resale"},
		{"title", "Sunny 3BHK near metro station"},
		{"area", 1200.0},
		{"price_per_unit", 5000.0},
		{"bedrooms", 3.0},
		{"city", "Pune"},
		{"location", "Baner"},
		{"pincode", "411045"},
	} {
		if err := d.Set(edit.field, edit.value); err != nil {
			panic(err)
		}
	}
	return d
}

func TestValidateStep_ShortTitleBlocksStepOne(t *testing.T) {
	d := validDraft()
	assert.NoError(t, d.Set("title", "Too short"))

	errs := wizard.ValidateStep(d, 1)

	assert.NotNil(t, errs)
	assert.Contains(t, errs, "title")
}

func TestValidateStep_One_Valid(t *testing.T) {
	assert.Nil(t, wizard.ValidateStep(validDraft(), 1))
}

func TestValidateStep_TransactionMustMatchClassification(t *testing.T) {
	d := validDraft()
	assert.NoError(t, d.Set("property_type", "plot"))
	assert.NoError(t, d.Set("transaction_type", "rent"))

	errs := wizard.ValidateStep(d, 1)

	assert.Contains(t, errs, "transaction_type")
}

func TestValidateStep_Two_Pincode(t *testing.T) {
	d := validDraft()
	assert.NoError(t, d.Set("pincode", "4110"))

	errs := wizard.ValidateStep(d, 2)

	assert.Contains(t, errs, "pincode")
}

func TestValidateStep_Two_FloorExceedsTotal(t *testing.T) {
	d := validDraft()
	assert.NoError(t, d.Set("floor", 12.0))
	assert.NoError(t, d.Set("total_floors", 8.0))

	errs := wizard.ValidateStep(d, 2)

	assert.Contains(t, errs, "floor")
}

func TestValidateStep_Three_NeverFails(t *testing.T) {
	d := wizard.NewDraft("", "", "")
	assert.Nil(t, wizard.ValidateStep(d, 3))
}

func TestValidateStep_Four_Contact(t *testing.T) {
	d := validDraft()
	assert.NoError(t, d.Set("contact_phone", "12345"))
	assert.NoError(t, d.Set("contact_email", "not-an-email"))

	errs := wizard.ValidateStep(d, 4)

	assert.Contains(t, errs, "contact_phone")
	assert.Contains(t, errs, "contact_email")
}

func TestValidateAll_CollectsAcrossSteps(t *testing.T) {
	d := wizard.NewDraft("", "", "")

	errs := wizard.ValidateAll(d)

	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "city")
	assert.Contains(t, errs, "contact_name")
}

func TestValidateAll_ValidDraft(t *testing.T) {
	assert.Nil(t, wizard.ValidateAll(validDraft()))
}

func TestValidateStep_RoomCountBounds(t *testing.T) {
	d := validDraft()
	assert.NoError(t, d.Set("bedrooms", 25.0))

	errs := wizard.ValidateStep(d, 1)

	assert.Contains(t, errs, "bedrooms")
}
