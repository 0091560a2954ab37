package models

import (
	"fmt"
	"strings"
)

// MemberTypeCode is the CRM option value recording which entity a list was created from.
type MemberTypeCode int

const (
	MemberTypeCodeAccount MemberTypeCode = 1
	MemberTypeCodeContact MemberTypeCode = 2
	MemberTypeCodeLead    MemberTypeCode = 4
)

// MemberType names the entity a marketing list holds.
type MemberType string

const (
	MemberTypeUnknown MemberType = ""
	MemberTypeAccount MemberType = "account"
	MemberTypeContact MemberType = "contact"
	MemberTypeLead    MemberType = "lead"
)

// MemberType resolves the option value. Unrecognized codes resolve to [MemberTypeUnknown].
func (c MemberTypeCode) MemberType() MemberType {
	switch c {
	case MemberTypeCodeAccount:
		return MemberTypeAccount
	case MemberTypeCodeContact:
		return MemberTypeContact
	case MemberTypeCodeLead:
		return MemberTypeLead
	default:
		return MemberTypeUnknown
	}
}

// Code is the inverse of [MemberTypeCode.MemberType]; unknown types map to 0.
func (t MemberType) Code() MemberTypeCode {
	switch t {
	case MemberTypeAccount:
		return MemberTypeCodeAccount
	case MemberTypeContact:
		return MemberTypeCodeContact
	case MemberTypeLead:
		return MemberTypeCodeLead
	default:
		return 0
	}
}

// ParseMemberType accepts a member type name in any case.
func ParseMemberType(s string) (MemberType, error) {
	switch t := MemberType(strings.ToLower(strings.TrimSpace(s))); t {
	case MemberTypeAccount, MemberTypeContact, MemberTypeLead:
		return t, nil
	default:
		return MemberTypeUnknown, fmt.Errorf("unknown member type %q", s)
	}
}

// Schema returns the member table definition, or false for types without member rows.
func (t MemberType) Schema() (MemberSchema, bool) {
	switch t {
	case MemberTypeContact:
		return ContactSchema, true
	case MemberTypeLead:
		return LeadSchema, true
	default:
		return MemberSchema{}, false
	}
}

// MarketingList is a CRM grouping of contacts or leads bound to an external Mailchimp list.
type MarketingList struct {
	record
	Name            string
	ExternalListID  string
	CreatedFromCode MemberTypeCode
}

// NewMarketingList creates an unsaved marketing list.
func NewMarketingList(sequence int, name, externalListID string, code MemberTypeCode) *MarketingList {
	return &MarketingList{
		record:          newRecord(sequence),
		Name:            name,
		ExternalListID:  externalListID,
		CreatedFromCode: code,
	}
}

// MemberType resolves the list's source type code.
func (l *MarketingList) MemberType() MemberType {
	return l.CreatedFromCode.MemberType()
}

// Reference returns the trigger reference for this list.
func (l *MarketingList) Reference() EntityReference {
	return EntityReference{LogicalName: ListSchema.LogicalName, ID: l.ID()}
}

// Validate requires a name. The external list id may be empty until the list is linked.
func (l *MarketingList) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("marketing list name is required")
	}
	return nil
}
