// Package types holds values shared by every filebridge binary.
package types

// Version is the canonical project version reported by the CLI, the HTTP
// index and published events.
const Version = "2.0.0"
