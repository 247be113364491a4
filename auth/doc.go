// Package auth implements the identity side of the studio: signing and
// checking bearer tokens, hashing passwords and turning a token subject
// back into a Principal bound to the request context.
//
// Tokens are stateless, nothing about them is kept on the server. A token
// is accepted as long as its signature matches the configured secret and
// it has not expired, which means a token cannot be revoked before its
// expiration. Keep the lifetime short if that is a concern.
//
// The password is never stored, only its bcrypt hash (which carries
// its own salt).
package auth
