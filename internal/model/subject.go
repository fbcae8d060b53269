package model

import "strings"

// Subject represents one professional entity queued for enrichment.
// Fields are immutable once the subject is submitted to a run.
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Practice  string `json:"practice,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Location  string `json:"location,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Website   string `json:"website,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// KnownContactFields counts the contact fields already present on the
// subject. Used by the batch priority sort.
func (s Subject) KnownContactFields() int {
	n := 0
	if strings.TrimSpace(s.Email) != "" {
		n++
	}
	if strings.TrimSpace(s.Phone) != "" {
		n++
	}
	if strings.TrimSpace(s.Website) != "" {
		n++
	}
	return n
}

// Surname returns the last whitespace-separated token of the display
// name, lowercased. Empty when the name is blank.
func (s Subject) Surname() string {
	fields := strings.Fields(s.Name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}
