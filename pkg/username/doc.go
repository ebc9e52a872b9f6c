// Package username generates usernames for application profiles from
// email addresses: the local part plus a random numeric suffix, e.g.
// "player" from "player@example.com" becomes "player417".
//
// The scheme is intentionally simple; uniqueness is ultimately enforced
// by the profile table's constraints. FromEmailWithCheck offers a
// bounded retry loop against an availability callback for callers that
// want to resolve collisions before writing.
package username
