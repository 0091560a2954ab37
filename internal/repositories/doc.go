// Package repositories implements SQLite persistence for the CRM store that listsync reads and writes.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [MarketingListRepository] : Marketing lists and their external Mailchimp list ids
//   - [PersonRepository] : Contacts and leads, list membership, and the member query a push uses
//   - [ConfigurationRepository] : Mailchimp configuration rows and active configuration resolution
//   - [SyncRecordRepository] : Local mirrors of remote batch jobs
//
// Lookups that find nothing return errors wrapping [shared.ErrRecordNotFound].
// Empty strings are stored as NULL, so "not null" filters in queries mean "non-empty".
package repositories
