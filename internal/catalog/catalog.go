// Package catalog holds the closed option sets for property classification.
// The category -> property-type and type -> transaction mappings live here so
// an invalid combination is unrepresentable instead of merely unvalidated.
package catalog

type UserType string

const (
	UserOwner   UserType = "owner"
	UserAgent   UserType = "agent"
	UserBuilder UserType = "builder"
)

type PropertyCategory string

const (
	CategoryResidential  PropertyCategory = "residential"
	CategoryCommercial   PropertyCategory = "commercial"
	CategoryAgricultural PropertyCategory = "agricultural"
)

type PropertyType string

const (
	TypeFlatApartment      PropertyType = "flat-apartment"
	TypeIndependentHouse   PropertyType = "independent-house"
	TypeVilla              PropertyType = "villa"
	TypeBuilderFloor       PropertyType = "builder-floor"
	TypePlot               PropertyType = "plot"
	TypeStudioApartment    PropertyType = "studio-apartment"
	TypeFarmhouse          PropertyType = "farmhouse"
	TypeOfficeSpace        PropertyType = "office-space"
	TypeShopShowroom       PropertyType = "shop-showroom"
	TypeCommercialLand     PropertyType = "commercial-land"
	TypeWarehouseGodown    PropertyType = "warehouse-godown"
	TypeIndustrialBuilding PropertyType = "industrial-building"
	TypeHotelResort        PropertyType = "hotel-resort"
	TypeAgriculturalLand   PropertyType = "agricultural-land"
	TypeFarmLand           PropertyType = "farm-land"
	TypeOrchard            PropertyType = "orchard"
)

type TransactionType string

const (
	TransactionSale   TransactionType = "sale"
	TransactionResale TransactionType = "resale"
	TransactionRent   TransactionType = "rent"
	TransactionLease  TransactionType = "lease"
)

type AreaUnit string

const (
	UnitSqft  AreaUnit = "sqft"
	UnitSqyd  AreaUnit = "sqyd"
	UnitSqm   AreaUnit = "sqm"
	UnitAcre  AreaUnit = "acre"
	UnitBigha AreaUnit = "bigha"
)

var typesByCategory = map[PropertyCategory][]PropertyType{
	CategoryResidential: {
		TypeFlatApartment, TypeIndependentHouse, TypeVilla, TypeBuilderFloor,
		TypePlot, TypeStudioApartment, TypeFarmhouse,
	},
	CategoryCommercial: {
		TypeOfficeSpace, TypeShopShowroom, TypeCommercialLand,
		TypeWarehouseGodown, TypeIndustrialBuilding, TypeHotelResort,
	},
	CategoryAgricultural: {
		TypeAgriculturalLand, TypeFarmLand, TypeOrchard,
	},
}

// landTypes never carry rent/lease transactions.
var landTypes = map[PropertyType]bool{
	TypePlot:             true,
	TypeCommercialLand:   true,
	TypeAgriculturalLand: true,
	TypeFarmLand:         true,
	TypeOrchard:          true,
}

var Amenities = []string{
	"parking", "lift", "power-backup", "security", "gated-community",
	"park", "gym", "swimming-pool", "club-house", "water-supply-24x7",
	"vastu-compliant", "borewell", "rainwater-harvesting", "cctv",
	"intercom", "piped-gas", "servant-room", "wifi",
}

var AreaUnits = []AreaUnit{UnitSqft, UnitSqyd, UnitSqm, UnitAcre, UnitBigha}

var UserTypes = []UserType{UserOwner, UserAgent, UserBuilder}

var Categories = []PropertyCategory{CategoryResidential, CategoryCommercial, CategoryAgricultural}

// TypesFor returns the property types allowed under a category. Unknown
// categories return nil.
func TypesFor(category PropertyCategory) []PropertyType {
	return typesByCategory[category]
}

// ValidType reports whether propertyType belongs to category's option set.
func ValidType(category PropertyCategory, propertyType PropertyType) bool {
	for _, t := range typesByCategory[category] {
		if t == propertyType {
			return true
		}
	}
	return false
}

// TransactionsFor returns the transactions available for a user/type pair.
// Builders list fresh inventory (sale, never resale); owners and agents list
// resale. Land parcels are not offered for rent or lease.
func TransactionsFor(userType UserType, propertyType PropertyType) []TransactionType {
	var out []TransactionType
	if userType == UserBuilder {
		out = append(out, TransactionSale)
	} else {
		out = append(out, TransactionResale)
	}
	if !landTypes[propertyType] {
		out = append(out, TransactionRent, TransactionLease)
	}
	return out
}

// ValidTransaction reports whether transaction is permitted for the pair.
func ValidTransaction(userType UserType, propertyType PropertyType, transaction TransactionType) bool {
	for _, t := range TransactionsFor(userType, propertyType) {
		if t == transaction {
			return true
		}
	}
	return false
}

func ValidUserType(u UserType) bool {
	return u == UserOwner || u == UserAgent || u == UserBuilder
}

func ValidCategory(c PropertyCategory) bool {
	_, ok := typesByCategory[c]
	return ok
}

func ValidAreaUnit(u AreaUnit) bool {
	for _, a := range AreaUnits {
		if a == u {
			return true
		}
	}
	return false
}

// MenuSection is one column of the discovery mega-menu: a category with its
// browsable property types.
type MenuSection struct {
	Category PropertyCategory `json:"category"`
	Label    string           `json:"label"`
	Types    []PropertyType   `json:"types"`
}

var menuLabels = map[PropertyCategory]string{
	CategoryResidential:  "Residential",
	CategoryCommercial:   "Commercial",
	CategoryAgricultural: "Agricultural",
}

func MenuSections() []MenuSection {
	sections := make([]MenuSection, 0, len(Categories))
	for _, c := range Categories {
		sections = append(sections, MenuSection{
			Category: c,
			Label:    menuLabels[c],
			Types:    typesByCategory[c],
		})
	}
	return sections
}
