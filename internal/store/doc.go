// Package store defines the persistence interfaces for Planora's entities.
// Implementations live under internal/platform; services and handlers depend
// only on these interfaces. Every task operation takes the owner's ID and is
// scoped to it: ownership isolation is enforced here, not in the handlers.
package store
