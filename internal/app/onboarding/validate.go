package onboarding

import (
	"fmt"
	"strings"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

// request is an Input after trimming, presence and format checks.
type request struct {
	name       string
	nationalID string

	email string // empty when absent
	// phone is in international format; empty when absent.
	phone string

	licensePlate string
	supervisorID string

	location domain.Location
}

func (r request) hasEmail() bool { return r.email != "" }
func (r request) hasPhone() bool { return r.phone != "" }

func (s *Service) validate(spec KindSpec, in Input) (request, error) {
	raw := map[string]string{
		FieldName:             domain.NormalizeHumanName(in.Name),
		FieldNationalID:       strings.TrimSpace(in.NationalID),
		FieldEmail:            trimPtr(in.Email),
		FieldPhoneNumber:      trimPtr(in.PhoneNumber),
		FieldMunicipalCouncil: strings.TrimSpace(in.MunicipalCouncil),
		FieldDistrict:         strings.TrimSpace(in.District),
		FieldWard:             strings.TrimSpace(in.Ward),
		FieldLicensePlate:     strings.TrimSpace(in.LicensePlate),
		FieldSupervisorID:     strings.TrimSpace(in.SupervisorID),
	}

	// 1. Presence.
	required := append([]string(nil), spec.Required...)
	if s.opts.RequireEmail {
		required = append(required, FieldEmail)
	}
	if s.opts.RequirePhone {
		required = append(required, FieldPhoneNumber)
	}
	var missing []string
	for _, f := range required {
		if raw[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return request{}, badRequest(CodeMissingFields, "Missing required fields", map[string]any{"missing": missing})
	}

	r := request{
		name:     raw[FieldName],
		location: domain.Location{Council: raw[FieldMunicipalCouncil], District: raw[FieldDistrict], Ward: raw[FieldWard]}.Normalize(),
	}

	// 2. Formats, in a fixed order.
	nic := raw[FieldNationalID]
	if !domain.ValidNationalID(nic) {
		return request{}, badRequest(CodeInvalidNationalID,
			"Invalid national ID format. Expected 12 digits, or 9 digits followed by V or X",
			map[string]any{"field": FieldNationalID})
	}
	// The check letter is case-insensitive; store one spelling so the index key is unique.
	r.nationalID = strings.ToUpper(nic)

	if e := raw[FieldEmail]; e != "" {
		if err := s.validator.Var(e, "email"); err != nil {
			return request{}, badRequest(CodeInvalidEmail, "Invalid email format", map[string]any{"field": FieldEmail})
		}
		r.email = e
	}

	if p := raw[FieldPhoneNumber]; p != "" {
		digits := domain.PhoneDigits(p)
		if len(digits) != 10 {
			return request{}, badRequest(CodeInvalidPhone,
				"Invalid phone number. Expected 10 digits",
				map[string]any{"field": FieldPhoneNumber})
		}
		r.phone = domain.InternationalPhone(digits, s.opts.CallingCode)
	}

	if spec.HasLicensePlate {
		plate := raw[FieldLicensePlate]
		if !s.opts.PlatePattern.MatchString(plate) {
			return request{}, badRequest(CodeInvalidLicensePlate,
				`Invalid license plate format. Format should be like "WP AB-1234"`,
				map[string]any{"field": FieldLicensePlate, "pattern": s.opts.PlatePattern.String()})
		}
		r.licensePlate = plate
	}

	segments := []struct {
		field, value string
	}{
		{FieldMunicipalCouncil, r.location.Council},
		{FieldDistrict, r.location.District},
		{FieldWard, r.location.Ward},
	}
	if spec.HasSupervisor {
		r.supervisorID = raw[FieldSupervisorID]
		segments = append(segments, struct{ field, value string }{FieldSupervisorID, r.supervisorID})
	}
	for _, seg := range segments {
		if !validSegment(seg.value) {
			return request{}, badRequest(CodeInvalidLocation,
				fmt.Sprintf("Invalid %s: must be a non-empty identifier without '/'", seg.field),
				map[string]any{"field": seg.field})
		}
	}

	if len(s.opts.AllowedDistricts) > 0 && !containsFold(s.opts.AllowedDistricts, r.location.District) {
		return request{}, badRequest(CodeDistrictNotAllowed,
			fmt.Sprintf("Onboarding is not enabled for district %q", r.location.District),
			map[string]any{"field": FieldDistrict, "allowed": s.opts.AllowedDistricts})
	}

	return r, nil
}

func validSegment(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}

func containsFold(list []string, v string) bool {
	for _, x := range list {
		if strings.EqualFold(strings.TrimSpace(x), v) {
			return true
		}
	}
	return false
}

func trimPtr(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
