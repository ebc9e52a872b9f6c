// Package chat implements peer-to-peer messaging and presence on top of
// the provider's row-level data API and realtime change feed.
//
// Presence is a heartbeat-maintained row per user in chat_users; messages
// are rows in chat_messages streamed to both parties over a conversation
// channel derived deterministically from the pair of emails. The feed can
// replay an insert, so subscribers deduplicate by message id.
package chat
