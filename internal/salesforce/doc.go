// Package salesforce is a small client for the Salesforce REST API.
//
// It covers what sfmcp needs: establishing a session (SOAP partner login with
// username, password and security token, or the OAuth 2.0 username-password
// flow when a connected app is configured), the global describe, the
// per-object describe, and SOQL queries.
//
// The session is established lazily on the first call and reused. A 401 from
// the REST API drops the cached session so that the next call logs in again;
// the failing call itself is not retried.
//
// Query records are decoded into ordered maps so that the field order chosen
// by the service (which follows the SELECT projection) is preserved.
package salesforce
