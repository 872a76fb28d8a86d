package onboarding

import "net/http"

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidNationalID   = "INVALID_NATIONAL_ID"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeInvalidPhone        = "INVALID_PHONE"
	CodeInvalidLicensePlate = "INVALID_LICENSE_PLATE"
	CodeInvalidLocation     = "INVALID_LOCATION"
	CodeDistrictNotAllowed  = "DISTRICT_NOT_ALLOWED"

	CodeLocationNotFound   = "LOCATION_NOT_FOUND"
	CodeSupervisorNotFound = "SUPERVISOR_NOT_FOUND"
	CodeEntityNotFound     = "ENTITY_NOT_FOUND"

	CodeNationalIDTaken   = "NATIONAL_ID_TAKEN"
	CodeNameTaken         = "NAME_TAKEN"
	CodeEmailTaken        = "EMAIL_TAKEN"
	CodePhoneTaken        = "PHONE_TAKEN"
	CodeLicensePlateTaken = "LICENSE_PLATE_TAKEN"

	CodeAccountCreationFailed = "ACCOUNT_CREATION_FAILED"
	CodeRecordWriteFailed     = "RECORD_WRITE_FAILED"
)

func badRequest(code, msg string, details map[string]any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: msg, Details: details}
}

func notFound(code, msg string, details map[string]any) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Message: msg, Details: details}
}

func serverError(code, msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: code, Message: msg}
}
