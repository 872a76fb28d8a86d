package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

// Metrics receives workflow outcomes.
type Metrics interface {
	ObserveOnboarding(kind domain.Kind, outcome string)
	NotificationFailed(kind domain.Kind)
}

// Outcome labels passed to Metrics.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type nopMetrics struct{}

func (nopMetrics) ObserveOnboarding(domain.Kind, string) {}
func (nopMetrics) NotificationFailed(domain.Kind)        {}

type Service struct {
	store  directory.Store
	idp    identity.Provider
	notify notifier.Notifier
	clk    clockport.Clock
	opts   Options

	log       zerolog.Logger
	metrics   Metrics
	validator *validator.Validate

	newEntityID func(prefix string) (string, error)
	newPassword func(nationalID string) (string, error)
}

func NewService(store directory.Store, idp identity.Provider, clk clockport.Clock, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		idp:         idp,
		clk:         clk,
		opts:        opts.withDefaults(),
		log:         logger.With().Str("component", "onboarding").Logger(),
		metrics:     nopMetrics{},
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		newEntityID: NewEntityID,
		newPassword: NewInitialPassword,
	}
}

// WithNotifier enables credential delivery for entities that have an email.
func (s *Service) WithNotifier(n notifier.Notifier) *Service {
	s.notify = n
	return s
}

func (s *Service) WithMetrics(m Metrics) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Onboard runs the onboarding workflow for one entity of the given kind.
//
// Steps run in order and stop at the first failure: presence, formats, existence,
// uniqueness, account creation, directory writes, notification. Nothing is written
// before account creation, and a failed directory write deletes the account again.
func (s *Service) Onboard(ctx context.Context, kind domain.Kind, actor domain.SubjectID, in Input) (res Result, err error) {
	spec, ok := SpecFor(kind)
	if !ok {
		return Result{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	defer func() { s.metrics.ObserveOnboarding(kind, outcomeOf(err)) }()

	r, err := s.validate(spec, in)
	if err != nil {
		return Result{}, err
	}
	if err := s.checkExists(ctx, spec, r); err != nil {
		return Result{}, err
	}
	if err := s.checkUnique(ctx, spec, r); err != nil {
		return Result{}, err
	}

	id, err := s.newEntityID(spec.IDPrefix)
	if err != nil {
		return Result{}, err
	}
	password, err := s.newPassword(r.nationalID)
	if err != nil {
		return Result{}, err
	}

	if _, err := s.idp.Create(ctx, identity.NewAccount{
		UID:         id,
		DisplayName: r.name,
		Password:    password,
		Email:       optional(r.email),
		PhoneNumber: optional(r.phone),
	}); err != nil {
		return Result{}, s.accountError(ctx, spec, r, err)
	}

	ent := domain.Entity{
		ID:                 domain.EntityID(id),
		Kind:               spec.Kind,
		Name:               r.name,
		NationalID:         r.nationalID,
		Email:              optional(r.email),
		PhoneNumber:        optional(r.phone),
		Location:           r.location,
		LicensePlate:       r.licensePlate,
		SupervisorID:       domain.EntityID(r.supervisorID),
		Status:             domain.StatusActive,
		MustChangePassword: true,
		CreatedAt:          s.clk.Now().UTC(),
		CreatedBy:          actor,
	}

	if err := s.store.CreateAll(ctx, s.documents(spec, r, ent)); err != nil {
		s.compensate(ctx, id, err)
		var conflict *directory.ConflictError
		if errors.As(err, &conflict) {
			if cerr := s.conflictFor(ctx, spec, conflict.Path); cerr != nil {
				return Result{}, cerr
			}
		}
		return Result{}, serverError(CodeRecordWriteFailed, fmt.Sprintf("Failed to save %s record", spec.Label))
	}

	s.logger(ctx).Info().
		Str("kind", string(kind)).
		Str("entity_id", id).
		Str("location", r.location.String()).
		Msg("entity onboarded")

	if r.hasEmail() && s.notify != nil {
		s.sendCredentials(ctx, spec, ent, password)
	}

	return Result{Entity: ent, Password: password}, nil
}

func (s *Service) checkExists(ctx context.Context, spec KindSpec, r request) error {
	if _, err := s.store.Get(ctx, WardPath(r.location)); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return notFound(CodeLocationNotFound,
				fmt.Sprintf("Path not found: %s", r.location),
				map[string]any{"location": r.location.String()})
		}
		return fmt.Errorf("get ward: %w", err)
	}
	if spec.HasSupervisor {
		if _, err := s.store.Get(ctx, supervisorPath(r.location, r.supervisorID)); err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				return notFound(CodeSupervisorNotFound,
					fmt.Sprintf("Supervisor not found: %s in path %s", r.supervisorID, r.location),
					map[string]any{"supervisorId": r.supervisorID, "location": r.location.String()})
			}
			return fmt.Errorf("get supervisor: %w", err)
		}
	}
	return nil
}

// checkUnique runs the uniqueness guards in a fixed order: national id, name, email, phone,
// license plate. The first conflict is returned.
func (s *Service) checkUnique(ctx context.Context, spec KindSpec, r request) error {
	if doc, err := s.lookup(ctx, nationalIDPath(r.nationalID)); err != nil {
		return err
	} else if doc != nil {
		return nationalIDTaken(*doc)
	}

	if err := s.checkNameUnique(ctx, spec, r); err != nil {
		return err
	}

	if r.hasEmail() {
		doc, err := s.lookup(ctx, emailPath(spec, r.email))
		if err != nil {
			return err
		}
		if doc != nil {
			return emailTaken(spec)
		}
		if _, err := s.idp.GetByEmail(ctx, r.email); err == nil {
			return emailTaken(spec)
		} else if !errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("lookup account by email: %w", err)
		}
	}

	if r.hasPhone() {
		doc, err := s.lookup(ctx, phonePath(spec, r.phone))
		if err != nil {
			return err
		}
		if doc != nil {
			return phoneTaken(spec)
		}
	}

	if spec.HasLicensePlate {
		doc, err := s.lookup(ctx, licensePlatePath(r.licensePlate))
		if err != nil {
			return err
		}
		if doc != nil {
			return licensePlateTaken(*doc)
		}
	}
	return nil
}

func (s *Service) checkNameUnique(ctx context.Context, spec KindSpec, r request) error {
	var (
		docs []directory.Document
		err  error
	)
	switch s.opts.NameScope {
	case NameScopeCouncil:
		docs, err = s.store.QueryGroup(ctx, spec.Collection, FieldName, r.name)
		docs = filterCouncil(docs, r.location.Council)
	case NameScopeGlobal:
		docs, err = s.store.QueryGroup(ctx, spec.Collection, FieldName, r.name)
	default:
		docs, err = s.store.Query(ctx, parentCollection(spec, r), FieldName, r.name)
	}
	if err != nil {
		return fmt.Errorf("query names: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	return s.nameTaken(spec, docs[0].Path)
}

// lookup returns nil, nil when nothing is stored at p.
func (s *Service) lookup(ctx context.Context, p directory.Path) (*directory.Document, error) {
	doc, err := s.store.Get(ctx, p)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", p.Parent().ID(), err)
	}
	return &doc, nil
}

// accountError maps a failed account creation. A contact conflict here means a
// concurrent request got past checkUnique too, so the guards run again to report
// its first conflict in the usual order.
func (s *Service) accountError(ctx context.Context, spec KindSpec, r request, err error) error {
	if errors.Is(err, identity.ErrEmailExists) || errors.Is(err, identity.ErrPhoneExists) {
		var appErr *Error
		if cerr := s.checkUnique(ctx, spec, r); errors.As(cerr, &appErr) {
			return appErr
		}
		if errors.Is(err, identity.ErrEmailExists) {
			return emailTaken(spec)
		}
		return phoneTaken(spec)
	}
	s.logger(ctx).Error().Err(err).Str("kind", string(spec.Kind)).Msg("create account failed")
	return serverError(CodeAccountCreationFailed, fmt.Sprintf("Failed to create authentication account for %s", spec.Label))
}

// compensate deletes an account whose directory records could not be written.
func (s *Service) compensate(ctx context.Context, uid string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.idp.Delete(ctx, uid); err != nil && !errors.Is(err, identity.ErrNotFound) {
		s.logger(ctx).Error().
			Err(err).
			AnErr("cause", cause).
			Str("orphaned_account", uid).
			Msg("compensating account delete failed")
		return
	}
	s.logger(ctx).Warn().AnErr("cause", cause).Str("account", uid).Msg("directory write failed; account deleted")
}

// conflictFor maps a path rejected by CreateAll to the uniqueness error it stands for.
// It returns nil for paths that are not uniqueness guards.
func (s *Service) conflictFor(ctx context.Context, spec KindSpec, p directory.Path) error {
	existing := directory.Document{Path: p}
	if doc, err := s.store.Get(ctx, p); err == nil {
		existing = doc
	}
	switch p.Parent().ID() {
	case collNationalIDs:
		return nationalIDTaken(existing)
	case collLicensePlates:
		return licensePlateTaken(existing)
	case collNameClaims:
		return s.nameTaken(spec, directory.Path(existing.String("path")))
	case spec.EmailIndex:
		return emailTaken(spec)
	case spec.PhoneIndex:
		return phoneTaken(spec)
	}
	return nil
}

func (s *Service) sendCredentials(ctx context.Context, spec KindSpec, ent domain.Entity, password string) {
	msg := notifier.Credentials{
		Kind:         spec.Kind,
		To:           *ent.Email,
		Name:         ent.Name,
		EntityID:     ent.ID,
		Password:     password,
		Location:     ent.Location,
		LicensePlate: ent.LicensePlate,
	}
	if ent.PhoneNumber != nil {
		msg.PhoneNumber = *ent.PhoneNumber
	}
	if err := s.notify.SendCredentials(ctx, msg); err != nil {
		s.metrics.NotificationFailed(spec.Kind)
		s.logger(ctx).Error().
			Err(err).
			Str("kind", string(spec.Kind)).
			Str("entity_id", string(ent.ID)).
			Msg("send credentials failed")
	}
}

func (s *Service) documents(spec KindSpec, r request, ent domain.Entity) []directory.Document {
	primary := parentCollection(spec, r).Doc(string(ent.ID))
	ref := func(extra map[string]any) map[string]any {
		m := map[string]any{"entityId": string(ent.ID), "kind": string(spec.Kind), "path": string(primary)}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	// Guards come first so a lost race reports the same conflict order as checkUnique.
	docs := []directory.Document{
		{Path: nationalIDPath(ent.NationalID), Data: ref(nil)},
		{Path: nameClaimPath(spec, s.nameScopeKey(spec, r), ent.Name), Data: ref(map[string]any{"name": ent.Name})},
	}
	if r.hasEmail() {
		docs = append(docs, directory.Document{Path: emailPath(spec, r.email), Data: ref(nil)})
	}
	if r.hasPhone() {
		docs = append(docs, directory.Document{Path: phonePath(spec, r.phone), Data: ref(nil)})
	}
	if spec.HasLicensePlate {
		docs = append(docs, directory.Document{Path: licensePlatePath(ent.LicensePlate), Data: ref(nil)})
	}
	docs = append(docs,
		directory.Document{Path: entityIDPath(string(ent.ID)), Data: ref(nil)},
		directory.Document{Path: primary, Data: entityData(ent)},
	)
	return docs
}

func (s *Service) nameScopeKey(spec KindSpec, r request) string {
	switch s.opts.NameScope {
	case NameScopeCouncil:
		return r.location.Council
	case NameScopeGlobal:
		return "*"
	default:
		return string(parentCollection(spec, r))
	}
}

func (s *Service) nameTaken(spec KindSpec, existing directory.Path) *Error {
	details := map[string]any{"field": FieldName}
	var where string
	switch s.opts.NameScope {
	case NameScopeCouncil:
		details["scope"] = "council"
		where = "in this municipal council"
	case NameScopeGlobal:
		details["scope"] = "global"
		where = "already"
		if loc, ok := locationOf(existing); ok {
			details["location"] = loc.String()
			where = "in " + loc.String()
		}
	default:
		if spec.HasSupervisor {
			details["scope"] = "supervisor"
			where = "under this supervisor"
		} else {
			details["scope"] = "ward"
			where = "in this ward"
		}
	}
	return badRequest(CodeNameTaken, fmt.Sprintf("A %s with this name already exists %s", spec.Label, where), details)
}

func nationalIDTaken(existing directory.Document) *Error {
	label := "supervisor or truck driver"
	if k, ok := SpecFor(domain.Kind(existing.String("kind"))); ok {
		label = k.Label
	}
	details := map[string]any{"field": FieldNationalID}
	msg := fmt.Sprintf("A %s with this national ID already exists", label)
	if loc, ok := locationOf(directory.Path(existing.String("path"))); ok {
		details["location"] = loc.String()
		msg += " in " + loc.String()
	}
	return badRequest(CodeNationalIDTaken, msg, details)
}

func licensePlateTaken(existing directory.Document) *Error {
	details := map[string]any{"field": FieldLicensePlate}
	msg := "A truck with this license plate already exists"
	if loc, ok := locationOf(directory.Path(existing.String("path"))); ok {
		details["location"] = loc.String()
		msg += " in " + loc.String()
	}
	return badRequest(CodeLicensePlateTaken, msg, details)
}

func emailTaken(spec KindSpec) *Error {
	return badRequest(CodeEmailTaken, fmt.Sprintf("A %s with this email already exists", spec.Label), map[string]any{"field": FieldEmail})
}

func phoneTaken(spec KindSpec) *Error {
	return badRequest(CodePhoneTaken, fmt.Sprintf("A %s with this phone number already exists", spec.Label), map[string]any{"field": FieldPhoneNumber})
}

func filterCouncil(docs []directory.Document, council string) []directory.Document {
	out := docs[:0:0]
	for _, d := range docs {
		if loc, ok := locationOf(d.Path); ok && loc.Council == council {
			out = append(out, d)
		}
	}
	return out
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeCreated
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Status < 500 {
		return OutcomeRejected
	}
	return OutcomeFailed
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func entityData(e domain.Entity) map[string]any {
	m := map[string]any{
		"id":                  string(e.ID),
		"kind":                string(e.Kind),
		FieldName:             e.Name,
		FieldNationalID:       e.NationalID,
		FieldMunicipalCouncil: e.Location.Council,
		FieldDistrict:         e.Location.District,
		FieldWard:             e.Location.Ward,
		"status":              string(e.Status),
		"mustChangePassword":  e.MustChangePassword,
		"createdAt":           e.CreatedAt.UTC().Format(time.RFC3339Nano),
		"createdBy":           string(e.CreatedBy),
	}
	if e.Email != nil {
		m[FieldEmail] = *e.Email
	}
	if e.PhoneNumber != nil {
		m[FieldPhoneNumber] = *e.PhoneNumber
	}
	if e.LicensePlate != "" {
		m[FieldLicensePlate] = e.LicensePlate
	}
	if e.SupervisorID != "" {
		m[FieldSupervisorID] = string(e.SupervisorID)
	}
	return m
}

func entityFromDocument(doc directory.Document) (domain.Entity, error) {
	e := domain.Entity{
		ID:           domain.EntityID(doc.String("id")),
		Kind:         domain.Kind(doc.String("kind")),
		Name:         doc.String(FieldName),
		NationalID:   doc.String(FieldNationalID),
		Email:        optional(doc.String(FieldEmail)),
		PhoneNumber:  optional(doc.String(FieldPhoneNumber)),
		LicensePlate: doc.String(FieldLicensePlate),
		SupervisorID: domain.EntityID(doc.String(FieldSupervisorID)),
		Status:       domain.Status(doc.String("status")),
		CreatedBy:    domain.SubjectID(doc.String("createdBy")),
		Location: domain.Location{
			Council:  doc.String(FieldMunicipalCouncil),
			District: doc.String(FieldDistrict),
			Ward:     doc.String(FieldWard),
		},
	}
	e.MustChangePassword, _ = doc.Data["mustChangePassword"].(bool)
	if e.ID == "" {
		e.ID = domain.EntityID(doc.Path.ID())
	}
	if ts := doc.String("createdAt"); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return domain.Entity{}, fmt.Errorf("decode createdAt of %s: %w", doc.Path, err)
		}
		e.CreatedAt = t.UTC()
	}
	if strings.TrimSpace(string(e.Kind)) == "" {
		if k, ok := specForCollection(doc.Path.Parent().ID()); ok {
			e.Kind = k.Kind
		}
	}
	return e, nil
}
