// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// It includes:
//   - A typed Claims wrapper (registered claims + user payload).
//   - A symmetric HS512 implementation for generating and verifying tokens.
//   - Context helpers for the verified identity, the full verified chain of a
//     delegated call, and the raw Authorization header it came from.
package jwt
