// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer CollabLogger with contextual
// helpers (session, component) and domain specific logging helpers for
// broadcast delivery and operation transforms.
package logging
