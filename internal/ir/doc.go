// Package ir provides the application intermediate representation consumed by
// every other internal package.
//
// This package contains type definitions, canonical serialization, and
// content-addressed hashing only. All other internal packages import ir;
// ir imports nothing internal. This keeps the IR the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - The IR is read-only after load. No component mutates it, and no
//     component caches IR-derived values beyond a single phase invocation.
//   - Constraint kinds are a closed enumeration. Anything that cannot be
//     classified becomes KindUnclassified, which always routes to MANUAL
//     handling downstream -- never to a best-effort fallback.
//   - Content-addressed identity (fingerprints, pair hashes, snapshot
//     hashes) uses canonical JSON only. Floats are forbidden in anything
//     that is hashed.
//   - All JSON tags use snake_case.
package ir
