// Package analytics reads the platform's admin dashboards: revenue
// summaries, per-plan breakdowns, user activity, hosting cost entries,
// and the server-rendered charts and PDF reports built from them.
//
// Access control lives in the backend. Non-admin callers get the
// backend's 403 through the normal error path.
package analytics
