// Package model defines the lead, signal, and profile records shared across the pipeline.
package model

import "strings"

// UnknownIndustry is assigned to leads whose source supplied no industry.
const UnknownIndustry = "Unknown"

// Range is an inclusive numeric bound. A Max of zero or less means unbounded.
type Range struct {
	Min int64 `json:"min" yaml:"min"`
	Max int64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v int64) bool {
	if v < r.Min {
		return false
	}
	if r.Max > 0 && v > r.Max {
		return false
	}
	return true
}

// LeadCriteria describes a single lead fetch. It is not mutated once passed in.
type LeadCriteria struct {
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"` // "City, ST" or free text
	Revenue        *Range `json:"revenue,omitempty"`
	Employees      *Range `json:"employees,omitempty"`
	RequireContact bool   `json:"require_contact,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// SplitLocation splits a free-text location into city and state on the
// first comma. Text without a comma is treated as a city.
func SplitLocation(location string) (city, state string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ""
	}
	before, after, found := strings.Cut(location, ",")
	if !found {
		return location, ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// RawLead is a single business record as produced by a lead source.
type RawLead struct {
	Name               string            `json:"name" yaml:"name"`
	Address            string            `json:"address,omitempty" yaml:"address"`
	Phone              string            `json:"phone,omitempty" yaml:"phone"`
	Website            string            `json:"website,omitempty" yaml:"website"`
	Industry           string            `json:"industry" yaml:"industry"`
	EstimatedRevenue   *float64          `json:"estimated_revenue,omitempty" yaml:"estimated_revenue"`
	EmployeeCount      *int              `json:"employee_count,omitempty" yaml:"employee_count"`
	OwnerName          string            `json:"owner_name,omitempty" yaml:"owner_name"`
	OwnerEmail         string            `json:"owner_email,omitempty" yaml:"owner_email"`
	FoundedYear        *int              `json:"founded_year,omitempty" yaml:"founded_year"`
	SocialProfiles     map[string]string `json:"social_profiles,omitempty" yaml:"social_profiles"`
	FragmentationIndex *float64          `json:"fragmentation_index,omitempty" yaml:"-"`
	Source             string            `json:"source,omitempty" yaml:"-"`
}

// HasRevenue reports whether the lead carries a positive revenue figure.
func (l RawLead) HasRevenue() bool {
	return l.EstimatedRevenue != nil && *l.EstimatedRevenue > 0
}

// HasContact reports whether the lead can be reached by phone or owner email.
func (l RawLead) HasContact() bool {
	return strings.TrimSpace(l.Phone) != "" || strings.TrimSpace(l.OwnerEmail) != ""
}

// Revenue returns the estimated revenue, or 0 when missing.
func (l RawLead) Revenue() float64 {
	if l.EstimatedRevenue == nil {
		return 0
	}
	return *l.EstimatedRevenue
}

// Employees returns the employee count, or 0 when missing.
func (l RawLead) Employees() int {
	if l.EmployeeCount == nil {
		return 0
	}
	return *l.EmployeeCount
}

// MarketLocation derives a "City, ST" location from the lead's address,
// taking the last two comma-separated parts and dropping any ZIP code.
func (l RawLead) MarketLocation() string {
	parts := strings.Split(l.Address, ",")
	if len(parts) < 2 {
		return ""
	}
	city := strings.TrimSpace(parts[len(parts)-2])
	state := strings.Fields(strings.TrimSpace(parts[len(parts)-1]))
	if city == "" || len(state) == 0 {
		return ""
	}
	return city + ", " + state[0]
}

// NormalizeLead trims string fields and defaults the industry.
func NormalizeLead(l RawLead) RawLead {
	l.Name = strings.TrimSpace(l.Name)
	l.Address = strings.TrimSpace(l.Address)
	l.Phone = strings.TrimSpace(l.Phone)
	l.Website = strings.TrimSpace(l.Website)
	l.Industry = strings.TrimSpace(l.Industry)
	if l.Industry == "" {
		l.Industry = UnknownIndustry
	}
	return l
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
