// Package runstore records the history of pipeline stage runs in SQLite.
//
// Every clean, enrich or validate invocation appends one row holding its
// status, row count, headline metric and the full JSON report, so `moviedata
// runs` can list past work without parsing report files. The database lives
// under the data directory.
//
// Schema changes bump schemaVersion in schema.go; an older database is
// rejected with ErrSchemaMismatch and must be deleted to adopt the new
// layout.
package runstore
