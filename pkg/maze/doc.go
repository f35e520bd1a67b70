// Package maze provides the in-memory model of a temporal maze.
//
// A [Graph] holds cells and typed directed edges between them:
//
//   - [KindOpen] edges are unconditional corridor steps
//   - [KindDoor] edges are only traversable while their door is open
//   - [KindStairs] edges join the same position on adjacent layers
//   - [KindElevator] edges are usable once their elevator is enabled
//
// Doors, buttons and elevators are declared objects. A [Button] sits on a
// cell and activates exactly one door or elevator. A [Problem] bundles a
// graph with its agents and the timed predicates that open and close doors
// at absolute times.
//
// Every mutation checks references: edges, buttons and agents may only name
// cells and objects that already exist, otherwise [ErrDanglingReference] is
// returned. Inserting an identical edge twice is a no-op, and all accessors
// return items in insertion order so serialization is deterministic.
package maze
