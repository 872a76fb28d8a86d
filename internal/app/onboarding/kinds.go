package onboarding

import (
	"github.com/vatelanka/waste-admin-api/internal/domain"
)

// Request field names, as they appear in payloads and error details.
const (
	FieldName             = "name"
	FieldNationalID       = "nationalId"
	FieldEmail            = "email"
	FieldPhoneNumber      = "phoneNumber"
	FieldMunicipalCouncil = "municipalCouncil"
	FieldDistrict         = "district"
	FieldWard             = "ward"
	FieldLicensePlate     = "licensePlate"
	FieldSupervisorID     = "supervisorId"
)

// Top-level index collections shared by every kind.
const (
	collMunicipalCouncils = "municipalCouncils"
	collDistricts         = "districts"
	collWards             = "wards"

	collNationalIDs   = "nationalIds"
	collLicensePlates = "licensePlates"
	collEntityIDs     = "entityIds"
	collNameClaims    = "nameClaims"
)

// KindSpec is the per-kind table the workflow is driven by.
type KindSpec struct {
	Kind domain.Kind
	// Label is the human noun used in messages.
	Label    string
	IDPrefix string
	// Collection is the collection id holding records of this kind under their parent.
	Collection string
	Required   []string

	EmailIndex string
	PhoneIndex string

	HasLicensePlate bool
	// HasSupervisor files records under an owning supervisor instead of directly under the ward.
	HasSupervisor bool
}

var (
	SupervisorKind = KindSpec{
		Kind:       domain.KindSupervisor,
		Label:      "supervisor",
		IDPrefix:   "SUP",
		Collection: "supervisors",
		Required: []string{
			FieldName, FieldNationalID, FieldMunicipalCouncil, FieldDistrict, FieldWard,
		},
		EmailIndex: "supervisorEmails",
		PhoneIndex: "supervisorPhones",
	}

	DriverKind = KindSpec{
		Kind:       domain.KindDriver,
		Label:      "truck driver",
		IDPrefix:   "TRUCK",
		Collection: "trucks",
		Required: []string{
			FieldName, FieldNationalID, FieldLicensePlate, FieldSupervisorID,
			FieldMunicipalCouncil, FieldDistrict, FieldWard,
		},
		EmailIndex:      "truckEmails",
		PhoneIndex:      "truckPhones",
		HasLicensePlate: true,
		HasSupervisor:   true,
	}
)

// SpecFor returns the table entry for k.
func SpecFor(k domain.Kind) (KindSpec, bool) {
	switch k {
	case domain.KindSupervisor:
		return SupervisorKind, true
	case domain.KindDriver:
		return DriverKind, true
	default:
		return KindSpec{}, false
	}
}

func specForCollection(coll string) (KindSpec, bool) {
	for _, k := range []KindSpec{SupervisorKind, DriverKind} {
		if k.Collection == coll {
			return k, true
		}
	}
	return KindSpec{}, false
}
