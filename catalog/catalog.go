// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package catalog holds the enumerations a claim is validated against:
// statuses, the closed-state set, assignment channels, coverages and person types.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/claim-ledger/models"
)

type Catalog struct {
	Statuses    []string `yaml:"statuses" json:"statuses"`
	Closed      []string `yaml:"closed" json:"closed"`
	Channels    []string `yaml:"channels" json:"channels"`
	Coverages   []string `yaml:"coverages" json:"coverages"`
	PersonTypes []string `yaml:"person_types" json:"person_types"`
}

// Default returns the built-in catalog
func Default() Catalog {
	return Catalog{
		Statuses: []string{
			models.StatusRegistered,
			"ASIGNADO",
			"CLIENTE CONTACTADO",
			"CARGA DOCUMENTAL RECIBIDA",
			"DESVIADO A FRAUDES",
			"DOCUMENTACIÓN COMPLETA",
			"EN ESPERA DE PRIMAS, PÓLIZA Y/O SALDO INSOLUTO",
			"PROPUESTA ECONÓMICA ENVIADA",
			"PROPUESTA ECONÓMICA ACEPTADA",
			"DERIVADO A CERO KM",
			"DERIVADO A REPOSICIÓN",
			"EN ESPERA DE PRIMERA FIRMA",
			"EN ESPERA DE SEGUNDA FIRMA (ROBO)",
			"EN ESPERA DE LEGALIZACIÓN",
			"DOCUMENTACIÓN LEGALIZADA",
			"SOLICITUD DE PAGO GENERADA",
			"PAGO LIBERADO",
			"CIERRE POR DESISTIMIENTO",
			"CIERRE POR RECHAZO",
			"DERIVADO A PARCIALES",
		},
		Closed: []string{
			"PAGO LIBERADO",
			"CIERRE POR DESISTIMIENTO",
			"CIERRE POR RECHAZO",
			"SOLICITUD DE PAGO GENERADA",
		},
		Channels:    []string{"Call center", "PP", "ALMA"},
		Coverages:   []string{"Robo", "Daño material"},
		PersonTypes: []string{"Natural", "Jurídica"},
	}
}

// LoadFromFile reads a YAML catalog. Lists missing from the file keep
// their default values.
func LoadFromFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	c := Default()
	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(override.Statuses) > 0 {
		c.Statuses = override.Statuses
	}
	if len(override.Closed) > 0 {
		c.Closed = override.Closed
	}
	if len(override.Channels) > 0 {
		c.Channels = override.Channels
	}
	if len(override.Coverages) > 0 {
		c.Coverages = override.Coverages
	}
	if len(override.PersonTypes) > 0 {
		c.PersonTypes = override.PersonTypes
	}

	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks the catalog is internally consistent
func (c Catalog) Validate() error {
	if !slices.Contains(c.Statuses, models.StatusRegistered) {
		return errors.New("catalog statuses must include " + models.StatusRegistered)
	}
	for _, s := range c.Closed {
		if !slices.Contains(c.Statuses, s) {
			return fmt.Errorf("closed status %q is not a known status", s)
		}
	}
	return nil
}

func (c Catalog) IsStatus(s string) bool     { return slices.Contains(c.Statuses, s) }
func (c Catalog) IsClosed(s string) bool     { return slices.Contains(c.Closed, s) }
func (c Catalog) IsChannel(s string) bool    { return slices.Contains(c.Channels, s) }
func (c Catalog) IsCoverage(s string) bool   { return slices.Contains(c.Coverages, s) }
func (c Catalog) IsPersonType(s string) bool { return slices.Contains(c.PersonTypes, s) }
