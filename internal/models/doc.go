// Package models defines the typed CRM records and persistence interfaces for listsync.
//
// The package contains two categories of types:
//
// 1. Wire-facing values: small structs passed between the store, the sync tasks and the batch API client
//   - [EntityReference] : The (logical name, id) pair that identifies a triggering record
//   - [Member] : A contact or lead row projected to the fields the batch payload needs
//
// 2. Persistent records: Database-backed entities with id, sequence and timestamps
//   - [MarketingList] : A CRM list of contacts or leads, linked to an external Mailchimp list id
//   - [Contact] and [Lead] : Member rows, joined to lists through list_members
//   - [Configuration] : Mailchimp credentials and endpoint; newest row is active
//   - [SyncRecord] : Local mirror of one remote batch job
//
// Every record kind has a schema definition in schema.go (logical name, table, columns).
// Code refers to record kinds and columns through those definitions rather than raw strings.
package models
