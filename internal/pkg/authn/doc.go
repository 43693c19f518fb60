// Package authn holds the request authentication steps mounted on routes.
//
// A Step inspects the request and returns the context downstream handlers
// should see. RequireAnyAuth demands at least one verified bearer credential;
// OptionalAnyAuth lets anonymous callers through while still rejecting
// credentials that were presented but do not verify.
package authn
