// Package dispatch runs independent units of work with a bounded number in
// flight.
//
// Units are claimed from a [Supply]. With a positive limit, Run starts that
// many worker loops; each loop claims a unit, awaits it, and claims the next
// until the supply is exhausted. With [Unbounded], every unit starts as soon as
// it is claimed.
//
// # Failure policy
//
// When a unit fails, no further units are claimed. Units already in flight
// are awaited, and Run returns every failure joined with errors.Join, so a
// caller can inspect each one with errors.As. Claiming also stops when the
// context is canceled; in-flight units see the canceled context.
//
// # Ordering
//
// Nothing is guaranteed about the order in which units start or finish.
package dispatch
