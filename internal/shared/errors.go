package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig  = fmt.Errorf("configuration file not found")
	ErrInvalidConfig  = fmt.Errorf("invalid configuration")
	ErrInvalidTimeout = fmt.Errorf("invalid timeout")

	// Sync errors
	ErrMissingConfiguration  = fmt.Errorf("configuration record is not yet created or some field data is missing")
	ErrMissingExternalListID = fmt.Errorf("mailchimp marketing list id is not present")
	ErrUnsupportedMemberType = fmt.Errorf("marketing list is of type account and accounts have no email address")
	ErrNoMembersFound        = fmt.Errorf("no members retrieved, add members with an email address present")
	ErrMissingBatchID        = fmt.Errorf("mailchimp sync batch id is not present")
	ErrRemoteCall            = fmt.Errorf("remote call failed")
	ErrResponseParse         = fmt.Errorf("response is not found or could not be parsed")
	ErrUpstreamFault         = fmt.Errorf("an error occurred in the CRM store")

	// Record errors
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrValidation     = fmt.Errorf("validation failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
