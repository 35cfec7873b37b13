/*
Package ports defines the boundary interfaces of the osier engine.

Following Hexagonal Architecture, the engine core depends only on these
interfaces; concrete implementations live under pkg/adapters. The package
also ships reusable contract test suites so every adapter is verified against
the same behavioral expectations.
*/
package ports
