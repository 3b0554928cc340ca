// Package ir provides the value and record types shared by every recq package.
//
// This package contains type definitions and their encodings only. All other
// internal packages import ir; ir imports nothing internal. This keeps ir the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed interface: Null, String, Int, Float, Bool, Time
//   - An absent field and an explicit null both read as Null
//   - Records are never mutated by the query layers
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for content-addressed record hashes
package ir
