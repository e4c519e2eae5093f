package service

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// ValidationError lists every rejected field of a request, keyed by form
// field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid point: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// OrNil returns e when it holds at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

const (
	maxNameLen  = 200
	maxEmailLen = 254
	maxPhoneLen = 32
	maxCityLen  = 120
)

// CreatePointInput carries the fields of a point registration.
type CreatePointInput struct {
	Name      string
	Email     string
	Phone     string
	Latitude  float64
	Longitude float64
	City      string
	UF        string
	ItemIDs   []int64
}

// Normalize trims text fields, upper-cases the UF and drops duplicate item
// ids while keeping first-seen order.
func (in CreatePointInput) Normalize() CreatePointInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.City = strings.TrimSpace(in.City)
	in.UF = strings.ToUpper(strings.TrimSpace(in.UF))

	seen := make(map[int64]bool, len(in.ItemIDs))
	ids := make([]int64, 0, len(in.ItemIDs))
	for _, id := range in.ItemIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	in.ItemIDs = ids
	return in
}

// Validate checks a normalized input and records every problem in verr.
func (in CreatePointInput) Validate(verr *ValidationError) {
	requireText(verr, "name", in.Name, maxNameLen)
	requireText(verr, "phone", in.Phone, maxPhoneLen)
	requireText(verr, "city", in.City, maxCityLen)

	if requireText(verr, "email", in.Email, maxEmailLen) {
		if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			verr.Add("email", "must be a valid e-mail address")
		}
	}

	if len(in.UF) != 2 || !isLetters(in.UF) {
		verr.Add("uf", "must be a two-letter state code")
	}

	if in.Latitude < -90 || in.Latitude > 90 {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		verr.Add("longitude", "must be between -180 and 180")
	}

	if len(in.ItemIDs) == 0 {
		verr.Add("items", "at least one item is required")
	}
	for _, id := range in.ItemIDs {
		if id <= 0 {
			verr.Add("items", fmt.Sprintf("invalid item id %d", id))
			break
		}
	}
}

func requireText(verr *ValidationError, field, value string, maxLen int) bool {
	switch {
	case value == "":
		verr.Add(field, "is required")
		return false
	case len(value) > maxLen:
		verr.Add(field, fmt.Sprintf("must be at most %d bytes", maxLen))
		return false
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
