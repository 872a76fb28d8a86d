package httpapi

import (
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/vatelanka/waste-admin-api/internal/app/locations"
	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
	"github.com/vatelanka/waste-admin-api/internal/domain"
)

// onboardRequest accepts the fields of both kinds. nic and driverName are
// accepted as aliases of nationalId and name.
type onboardRequest struct {
	Name        string                    `json:"name"`
	DriverName  string                    `json:"driverName"`
	NationalID  string                    `json:"nationalId"`
	NIC         string                    `json:"nic"`
	Email       nullable.Nullable[string] `json:"email"`
	PhoneNumber nullable.Nullable[string] `json:"phoneNumber"`

	MunicipalCouncil string `json:"municipalCouncil"`
	District         string `json:"district"`
	Ward             string `json:"ward"`

	LicensePlate string `json:"licensePlate"`
	SupervisorID string `json:"supervisorId"`
}

func (b onboardRequest) input() onboarding.Input {
	return onboarding.Input{
		Name:             firstNonBlank(b.Name, b.DriverName),
		NationalID:       firstNonBlank(b.NationalID, b.NIC),
		Email:            optionalString(b.Email),
		PhoneNumber:      optionalString(b.PhoneNumber),
		MunicipalCouncil: b.MunicipalCouncil,
		District:         b.District,
		Ward:             b.Ward,
		LicensePlate:     b.LicensePlate,
		SupervisorID:     b.SupervisorID,
	}
}

type locationDTO struct {
	MunicipalCouncil string `json:"municipalCouncil"`
	District         string `json:"district"`
	Ward             string `json:"ward"`
}

type entityDTO struct {
	ID                 string      `json:"id"`
	Kind               string      `json:"kind"`
	Password           string      `json:"password,omitempty"`
	Name               string      `json:"name"`
	NationalID         string      `json:"nationalId"`
	Email              *string     `json:"email,omitempty"`
	PhoneNumber        *string     `json:"phoneNumber,omitempty"`
	Location           locationDTO `json:"location"`
	LicensePlate       string      `json:"licensePlate,omitempty"`
	SupervisorID       string      `json:"supervisorId,omitempty"`
	Status             string      `json:"status"`
	MustChangePassword bool        `json:"mustChangePassword"`
	CreatedAt          time.Time   `json:"createdAt"`
	CreatedBy          string      `json:"createdBy,omitempty"`
}

func entityFromDomain(e domain.Entity) entityDTO {
	return entityDTO{
		ID:                 string(e.ID),
		Kind:               string(e.Kind),
		Name:               e.Name,
		NationalID:         e.NationalID,
		Email:              e.Email,
		PhoneNumber:        e.PhoneNumber,
		Location:           locationFromDomain(e.Location),
		LicensePlate:       e.LicensePlate,
		SupervisorID:       string(e.SupervisorID),
		Status:             string(e.Status),
		MustChangePassword: e.MustChangePassword,
		CreatedAt:          e.CreatedAt,
		CreatedBy:          string(e.CreatedBy),
	}
}

func createdFromResult(res onboarding.Result) entityDTO {
	out := entityFromDomain(res.Entity)
	out.Password = res.Password
	return out
}

func locationFromDomain(l domain.Location) locationDTO {
	return locationDTO{MunicipalCouncil: l.Council, District: l.District, Ward: l.Ward}
}

func wardFromLocation(l locationDTO) locations.Ward {
	return locations.Ward{MunicipalCouncil: l.MunicipalCouncil, District: l.District, Ward: l.Ward}
}

func optionalString(n nullable.Nullable[string]) *string {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
