// Package tasks runs the Mailchimp sync handlers against the CRM store.
//
// # Handlers
//
//  1. [Initiator.Execute] : push a marketing list
//     - Loads the list and checks its Mailchimp list id and member type
//     - Retrieves contact or lead members with an email address, newest first
//     - Builds one batch with a member creation per row
//     - Resolves the latest complete configuration before any network call
//     - Submits the batch and creates a sync record from the response
//
//  2. [Poller.Execute] : refresh a sync record
//     - Requires the record's batch id
//     - Resolves the latest configuration without the completeness check
//     - Fetches the batch job and updates the same record in place
//     - Writes the batch status to the MailChimpStatus output parameter
//
// Both handlers ignore targets with another logical name.
//
// # Execution Context
//
// [ExecutionContext] replaces ambient service lookups: it carries the target reference, the trace
// logger and the output parameters. Every failure is traced to the logger and returned as an
// [ExecutionError] whose Kind is one of the shared sentinels.
//
// # Progress Reporting
//
// Handlers send [ProgressUpdate] values on the optional progress channel. Updates use select with
// default so reporting never blocks a handler.
//
// # Dispatch
//
// [Dispatcher] routes a trigger by logical name and can chain a poll onto the sync record a push creates.
package tasks
