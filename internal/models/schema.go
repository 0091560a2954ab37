package models

// Column names a field of a record kind in the CRM store.
type Column string

func (c Column) String() string { return string(c) }

// ListSchema describes marketing list records.
var ListSchema = struct {
	LogicalName     string
	Table           string
	ID              Column
	Name            Column
	ExternalListID  Column
	CreatedFromCode Column
}{
	LogicalName:     "list",
	Table:           "marketing_lists",
	ID:              "id",
	Name:            "name",
	ExternalListID:  "mailchimp_list_id",
	CreatedFromCode: "created_from_code",
}

// ListMemberSchema describes the join between lists and member rows.
var ListMemberSchema = struct {
	LogicalName string
	Table       string
	ListID      Column
	EntityID    Column
	EntityType  Column
}{
	LogicalName: "listmember",
	Table:       "list_members",
	ListID:      "list_id",
	EntityID:    "entity_id",
	EntityType:  "entity_type",
}

// MemberSchema describes a contact or lead table. Both share the same columns.
type MemberSchema struct {
	LogicalName  string
	Table        string
	ID           Column
	FirstName    Column
	LastName     Column
	EmailAddress Column
	CreatedAt    Column
}

// ContactSchema and LeadSchema describe the two member kinds a marketing list can hold.
var (
	ContactSchema = MemberSchema{
		LogicalName:  "contact",
		Table:        "contacts",
		ID:           "id",
		FirstName:    "first_name",
		LastName:     "last_name",
		EmailAddress: "email_address",
		CreatedAt:    "created_at",
	}
	LeadSchema = MemberSchema{
		LogicalName:  "lead",
		Table:        "leads",
		ID:           "id",
		FirstName:    "first_name",
		LastName:     "last_name",
		EmailAddress: "email_address",
		CreatedAt:    "created_at",
	}
)

// ConfigurationSchema describes Mailchimp configuration records.
var ConfigurationSchema = struct {
	LogicalName string
	Table       string
	Username    Column
	Password    Column
	APIKey      Column
	URL         Column
	CreatedAt   Column
}{
	LogicalName: "mailchimp_configuration",
	Table:       "mailchimp_configurations",
	Username:    "username",
	Password:    "password",
	APIKey:      "api_key",
	URL:         "url",
	CreatedAt:   "created_at",
}

// RequiredConfigurationColumns must all be non-null for a configuration to count as complete.
var RequiredConfigurationColumns = []Column{
	ConfigurationSchema.Username,
	ConfigurationSchema.Password,
	ConfigurationSchema.URL,
	ConfigurationSchema.APIKey,
}

// SyncSchema describes Mailchimp sync records.
var SyncSchema = struct {
	LogicalName        string
	Table              string
	BatchID            Column
	Status             Column
	SubmittedAt        Column
	CompletedAt        Column
	TotalOperations    Column
	FinishedOperations Column
	ErroredOperations  Column
	MarketingList      Column
	// StatusOutput is the execution output a poll writes the latest status to.
	StatusOutput string
}{
	LogicalName:        "mailchimp_sync",
	Table:              "mailchimp_syncs",
	BatchID:            "batch_id",
	Status:             "status",
	SubmittedAt:        "submitted_at",
	CompletedAt:        "completed_at",
	TotalOperations:    "total_operations",
	FinishedOperations: "finished_operations",
	ErroredOperations:  "errored_operations",
	MarketingList:      "marketing_list_id",
	StatusOutput:       "MailChimpStatus",
}
