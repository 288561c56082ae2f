package tools

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// SeedFile is the YAML shape of a seed data file.
type SeedFile struct {
	Customers []SeedCustomer `yaml:"customers"`
}

// SeedCustomer is one customer in a seed file, with optional tickets.
type SeedCustomer struct {
	Name    string       `yaml:"name"`
	Email   string       `yaml:"email"`
	Phone   string       `yaml:"phone"`
	Status  string       `yaml:"status"`
	Tickets []SeedTicket `yaml:"tickets"`
}

// SeedTicket is one ticket in a seed file.
type SeedTicket struct {
	Issue    string `yaml:"issue"`
	Priority string `yaml:"priority"`
}

// SeedFromFile loads customers and tickets from a YAML file into the
// store. Existing rows are kept; seeding is additive.
func (s *Store) SeedFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}

	return s.Seed(seed)
}

// Seed inserts the given customers and their tickets.
func (s *Store) Seed(seed SeedFile) error {
	for _, sc := range seed.Customers {
		customer, err := s.CreateCustomer(sc.Name, sc.Email, sc.Phone, sc.Status)
		if err != nil {
			return fmt.Errorf("seed customer %q: %w", sc.Name, err)
		}
		for _, st := range sc.Tickets {
			if _, err := s.CreateTicket(customer.ID, st.Issue, st.Priority); err != nil {
				return fmt.Errorf("seed ticket for %q: %w", sc.Name, err)
			}
		}
	}
	return nil
}

// DefaultSeed returns a small demo dataset.
func DefaultSeed() SeedFile {
	return SeedFile{
		Customers: []SeedCustomer{
			{
				Name: "Alice Johnson", Email: "alice@example.com", Phone: "555-0101", Status: "active",
				Tickets: []SeedTicket{
					{Issue: "Cannot log in after password reset", Priority: "high"},
					{Issue: "Billing statement shows duplicate charge", Priority: "medium"},
				},
			},
			{
				Name: "Bob Smith", Email: "bob@example.com", Phone: "555-0102", Status: "active",
				Tickets: []SeedTicket{
					{Issue: "Feature request: export to CSV", Priority: "low"},
				},
			},
			{
				Name: "Carol Diaz", Email: "carol@example.com", Phone: "555-0103", Status: "inactive",
			},
		},
	}
}
