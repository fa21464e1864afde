// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/models"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"user@example.com", nil},
		{"first.last-name@sub.example.co", nil},
		{"user_1@example.mx", nil},
		{"user@.com", ErrInvalidEmail},
		{"userexample.com", ErrInvalidEmail},
		{"user@example", ErrInvalidEmail},
		{"user name@example.com", ErrInvalidEmail},
		{"", ErrEmailRequired},
		{"   ", ErrEmailRequired},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := Email(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterClaim(t *testing.T) {
	cat := catalog.Default()

	t.Run("valid minimal", func(t *testing.T) {
		err := RegisterClaim(models.RegisterClaimRequest{ClaimNumber: "S-1"}, cat)
		assert.NoError(t, err)
	})

	t.Run("missing claim number", func(t *testing.T) {
		err := RegisterClaim(models.RegisterClaimRequest{ClaimNumber: "  "}, cat)
		var errs Errors
		require.True(t, errors.As(err, &errs))
		assert.Equal(t, Errors{"claim_number is required"}, errs)
	})

	t.Run("aggregates every problem", func(t *testing.T) {
		req := models.RegisterClaimRequest{
			ClaimNumber: "",
			ClaimDetails: models.ClaimDetails{
				IncidentDate:      "13/01/2025",
				AssignmentChannel: "Fax",
				Coverage:          "Granizo",
				Insured:           models.Party{Email: "user@.com", PersonType: "Otro"},
				Owner:             models.Party{Email: "owner@example.com"},
			},
		}
		err := RegisterClaim(req, cat)
		var errs Errors
		require.True(t, errors.As(err, &errs))
		assert.Len(t, errs, 6)
		assert.Contains(t, errs, "insured.email is not valid")
		assert.NotContains(t, errs, "owner.email is not valid")
	})
}

func TestAppendStatus(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		status  string
		wantErr bool
	}{
		{"ASIGNADO", false},
		{"PAGO LIBERADO", false},
		{"", true},
		{models.StatusRegistered, true},
		{"Seleccionar estatus", true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := AppendStatus(models.AppendStatusRequest{Status: tt.status}, cat)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestEditClaim(t *testing.T) {
	zero := 0
	err := EditClaim(models.EditClaimRequest{ExpectedRevision: &zero}, catalog.Default())
	assert.Error(t, err)

	one := 1
	err = EditClaim(models.EditClaimRequest{ExpectedRevision: &one}, catalog.Default())
	assert.NoError(t, err)
}

func TestNewUser(t *testing.T) {
	valid := models.CreateUserRequest{
		Name:     "Ana Pérez",
		Email:    "ana@example.com",
		Password: "s3cret-pass",
		Role:     models.RoleHandler,
	}
	assert.NoError(t, NewUser(valid))

	err := NewUser(models.CreateUserRequest{Role: "Seleccionar rol"})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errors{
		"name is required",
		"email is required",
		"password is required",
		"role must be ADMINISTRADOR or LIQUIDADOR",
	}, errs)

	short := valid
	short.Password = "abc"
	assert.Error(t, NewUser(short))

	badEmail := valid
	badEmail.Email = "ana.example.com"
	assert.EqualError(t, NewUser(badEmail), "email is not valid")
}
