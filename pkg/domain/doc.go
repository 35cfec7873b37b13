/*
Package domain contains the core domain models for the osier composition engine.

It defines the fundamental entities of the mechanism: Records (the state values
that flow between units), Plans (the step sequences of a run), Runs (the
lifecycle snapshot of one execution) and the error taxonomy shared by the
projector, merger and executor. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Record: A field-name to value mapping honoring one schema at a time.
  - Reducer: A binary combining function for fields written by several units.
  - Plan: The ordered list of steps; a step fans out into concurrent units.
  - Run: Captures the runtime snapshot of one execution (status, state, cursor).
*/
package domain
