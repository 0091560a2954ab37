// Package services talks to the Mailchimp batch operations API.
//
// # Codec
//
// [BuildBatchRequest] turns list members into a [BatchRequest] with one POST operation per member.
// Each operation body is itself a JSON document ([MemberPayload]) carried as a string.
// [DecodeBatchResponse] reads the batch job document returned by both submission and status calls.
// [BatchResponse.Apply] maps it onto a [models.SyncRecord], reading zone-less US timestamps in the
// configured location and storing UTC.
//
// # Client
//
// [MailchimpService] authenticates with HTTP basic credentials built from the configured username and
// api key. Batch submission runs under a fixed deadline ([DefaultBatchTimeout] unless configured);
// status reads use the client's own timeout.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrRemoteCall] : transport failure or non-2xx status
//   - [shared.ErrResponseParse] : empty, null or malformed response body
//   - [shared.ErrNoMembersFound] : batch requested for zero members
package services
