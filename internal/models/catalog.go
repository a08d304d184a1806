package models

import "strings"

type SpecialtyCategory string

const (
	CategoryDefault     SpecialtyCategory = "default"
	CategoryGym         SpecialtyCategory = "gimnasio"
	CategoryKinesiology SpecialtyCategory = "kinesiologia"
)

func ParseSpecialtyCategory(value string) SpecialtyCategory {
	switch SpecialtyCategory(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryGym:
		return CategoryGym
	case CategoryKinesiology:
		return CategoryKinesiology
	default:
		return CategoryDefault
	}
}

type CopaymentTier string

const (
	CopaymentTier1 CopaymentTier = "tier1"
	CopaymentTier2 CopaymentTier = "tier2"
)

type Patient struct {
	ID              int64          `json:"id"`
	FirstName       string         `json:"nombre"`
	LastName        string         `json:"apellido"`
	Email           *string        `json:"email"`
	Active          bool           `json:"activo"`
	InsurancePlanID *int64         `json:"obraSocialId"`
	CopaymentTier   *CopaymentTier `json:"coseguroTipo,omitempty"`
}

func (p *Patient) Summary() *PatientSummary {
	return &PatientSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}

type Specialty struct {
	ID                  int64             `json:"id"`
	Name                string            `json:"nombre"`
	SlotDurationMinutes int               `json:"duracionTurnoMin"`
	Category            SpecialtyCategory `json:"categoria"`
	Active              bool              `json:"activa"`
}

func (s *Specialty) Summary() *SpecialtySummary {
	return &SpecialtySummary{ID: s.ID, Name: s.Name, SlotDurationMinutes: s.SlotDurationMinutes}
}

type Staff struct {
	ID     int64   `json:"id"`
	Name   string  `json:"nombre"`
	Email  *string `json:"email"`
	Active bool    `json:"activo"`
}

func (s *Staff) Summary() *StaffSummary {
	return &StaffSummary{ID: s.ID, Name: s.Name, Email: s.Email}
}

type PatientSummary struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"nombre"`
	LastName  string  `json:"apellido"`
	Email     *string `json:"email,omitempty"`
}

func (p *PatientSummary) DisplayName() string {
	if p == nil {
		return "Paciente"
	}
	return p.LastName + ", " + p.FirstName
}

type SpecialtySummary struct {
	ID                  int64  `json:"id"`
	Name                string `json:"nombre"`
	SlotDurationMinutes int    `json:"duracionTurnoMin"`
}

type StaffSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"nombre"`
	Email *string `json:"email,omitempty"`
}
