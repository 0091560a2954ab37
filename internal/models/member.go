package models

import (
	"fmt"
	"strings"
)

// Member is a contact or lead row projected to the columns the batch payload uses.
type Member struct {
	ID           string
	FirstName    string
	LastName     string
	EmailAddress string
}

// Person is a persistent contact or lead row.
type Person struct {
	record
	Kind         MemberType
	FirstName    string
	LastName     string
	EmailAddress string
}

// Contact and Lead share storage shape; Kind tells them apart.
type (
	Contact = Person
	Lead    = Person
)

// NewContact creates an unsaved contact.
func NewContact(sequence int, firstName, lastName, email string) *Person {
	return newPerson(sequence, MemberTypeContact, firstName, lastName, email)
}

// NewLead creates an unsaved lead.
func NewLead(sequence int, firstName, lastName, email string) *Person {
	return newPerson(sequence, MemberTypeLead, firstName, lastName, email)
}

func newPerson(sequence int, kind MemberType, firstName, lastName, email string) *Person {
	return &Person{
		record:       newRecord(sequence),
		Kind:         kind,
		FirstName:    firstName,
		LastName:     lastName,
		EmailAddress: email,
	}
}

// Member projects the row to a [Member].
func (p *Person) Member() Member {
	return Member{ID: p.ID(), FirstName: p.FirstName, LastName: p.LastName, EmailAddress: p.EmailAddress}
}

// Validate checks the kind. Email is optional; rows without one are never synced.
func (p *Person) Validate() error {
	if _, ok := p.Kind.Schema(); !ok {
		return fmt.Errorf("unsupported member kind %q", p.Kind)
	}
	if p.EmailAddress != "" && !strings.Contains(p.EmailAddress, "@") {
		return fmt.Errorf("invalid email address %q", p.EmailAddress)
	}
	return nil
}
