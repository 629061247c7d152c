// Package skybase is a client for the Skybase document-store (Base) and
// blob-store (Drive) services. A Client is constructed from an explicit
// Config carrying the project key; Base exposes record CRUD plus a
// fluent query builder with cursor-driven pagination, and Drive exposes
// file list/get/put/delete with transparent chunked uploads for
// contents above MaxChunkSize. All operations are blocking calls that
// take a context.Context; the SDK keeps no shared mutable state between
// independent call chains.
package skybase
