package domain

// SubjectID is the authenticated admin subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// EntityID identifies an onboarded supervisor or driver. The same value is used as the
// uid of the entity's authentication account.
type EntityID string
