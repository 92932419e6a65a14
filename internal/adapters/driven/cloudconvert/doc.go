// Package cloudconvert implements the conversion port against the
// CloudConvert v2 REST API.
//
// A conversion is one job with three linked tasks:
//
//   - upload: import/upload, exposing a pre-signed form for the file
//   - convert: convert, reading the upload and producing the target format
//   - export: export/url, publishing the result at a temporary URL
//
// # Endpoints
//
// Jobs and tasks are created and read on the REST endpoint
// (https://api.cloudconvert.com). Waiting for a job uses the synchronous
// endpoint (https://sync.api.cloudconvert.com), which holds the request open
// until the job is terminal, so no local polling is needed. Both have sandbox
// equivalents selected by the conversion.sandbox setting.
//
// # Authentication
//
// REST and sync calls carry the API key as a bearer token via an
// oauth2.StaticTokenSource. Upload forms and export URLs are pre-signed and
// are requested without credentials.
//
// # Rate Limiting
//
// Calls to the REST and sync endpoints pass through a token bucket
// (conversion.requests_per_second). A 429 response is reported as a
// RateLimitError; the adapter never retries on its own.
package cloudconvert
