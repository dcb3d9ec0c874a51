// Package session manages the mock local session: who is signed in, with which role, and for how long.
//
// There is no real authentication. [Manager.Login] accepts any secret of at least six characters for an
// identity listed in the fixed [Directory], and the session is represented by a local session token: a
// JWT-shaped string whose signature segment is a constant placeholder. The token carries no integrity
// guarantee and is never verified; it exists only to carry an expiry.
//
// The token lives in the short-lived storage area under [TokenKey] and the identity in the long-lived
// area under [IdentityKey]. Both are written and removed together.
package session
