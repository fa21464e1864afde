// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package validate checks claim and user input before anything is written.
// Problems are collected rather than returned on the first failure, so the
// caller can report every issue at once.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/models"
)

var emailRx = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)

var (
	ErrEmailRequired = errors.New("email required")
	ErrInvalidEmail  = errors.New("invalid email")
)

// MinPasswordLen is the shortest password accepted for new accounts
const MinPasswordLen = 8

// Errors is an aggregated list of validation problems
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

func (e *Errors) add(msg string) {
	*e = append(*e, msg)
}

// Err returns nil when no problem was recorded
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Email checks an address against the accepted pattern.
// Empty input returns ErrEmailRequired.
func Email(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrEmailRequired
	}
	if !emailRx.MatchString(s) {
		return ErrInvalidEmail
	}
	return nil
}

// Date checks a YYYY-MM-DD date
func Date(s string) error {
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}

// RegisterClaim validates a registration request
func RegisterClaim(req models.RegisterClaimRequest, cat catalog.Catalog) error {
	var errs Errors
	if strings.TrimSpace(req.ClaimNumber) == "" {
		errs.add("claim_number is required")
	}
	details(&errs, req.ClaimDetails, cat)
	return errs.Err()
}

// EditClaim validates the descriptive fields of an edit request
func EditClaim(req models.EditClaimRequest, cat catalog.Catalog) error {
	var errs Errors
	details(&errs, req.ClaimDetails, cat)
	if req.ExpectedRevision != nil && *req.ExpectedRevision < 1 {
		errs.add("expected_revision must be positive")
	}
	return errs.Err()
}

// AppendStatus validates a status transition request
func AppendStatus(req models.AppendStatusRequest, cat catalog.Catalog) error {
	var errs Errors
	switch {
	case strings.TrimSpace(req.Status) == "":
		errs.add("status is required")
	case req.Status == models.StatusRegistered:
		errs.add("status " + models.StatusRegistered + " is only set at registration")
	case !cat.IsStatus(req.Status):
		errs.add("unknown status: " + req.Status)
	}
	return errs.Err()
}

// NewUser validates an account creation request
func NewUser(req models.CreateUserRequest) error {
	var errs Errors
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name is required")
	}
	switch err := Email(req.Email); {
	case errors.Is(err, ErrEmailRequired):
		errs.add("email is required")
	case err != nil:
		errs.add("email is not valid")
	}
	if req.Password == "" {
		errs.add("password is required")
	} else if len(req.Password) < MinPasswordLen {
		errs.add("password must be at least 8 characters")
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleHandler {
		errs.add("role must be " + models.RoleAdmin + " or " + models.RoleHandler)
	}
	return errs.Err()
}

func details(errs *Errors, d models.ClaimDetails, cat catalog.Catalog) {
	if d.IncidentDate != "" && Date(d.IncidentDate) != nil {
		errs.add("incident_date must be YYYY-MM-DD")
	}
	if d.AssignmentChannel != "" && !cat.IsChannel(d.AssignmentChannel) {
		errs.add("unknown assignment_channel: " + d.AssignmentChannel)
	}
	if d.Coverage != "" && !cat.IsCoverage(d.Coverage) {
		errs.add("unknown coverage: " + d.Coverage)
	}
	party(errs, "insured", d.Insured, cat)
	party(errs, "owner", d.Owner, cat)
}

// party checks optional contact fields; an empty email is allowed
func party(errs *Errors, prefix string, p models.Party, cat catalog.Catalog) {
	if p.Email != "" && Email(p.Email) != nil {
		errs.add(prefix + ".email is not valid")
	}
	if p.PersonType != "" && !cat.IsPersonType(p.PersonType) {
		errs.add("unknown " + prefix + ".person_type: " + p.PersonType)
	}
}
