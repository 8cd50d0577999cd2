// Package session is the client-side authentication layer for the HAP
// hospital administration API: token persistence, claim decoding, the
// session state machine, and route guarding.
//
// Lifecycle:
//   - A Service is constructed once at application start with a TokenStore
//     and an Authenticator, and torn down with Close. Init seeds the session
//     from the stored credential; a credential that fails to decode or is
//     already expired is discarded and the store cleared.
//   - Login raises the loading flag, exchanges credentials at the
//     authentication endpoint, persists the returned token before the
//     session publishes as authenticated, and always lowers the flag before
//     returning. Logout clears the store first and resets the session
//     second. Both paths advance an epoch counter so a login resolving
//     after a logout discards its result.
//
// Claims:
//   - DecodeClaims parses the token payload without verifying the
//     signature; verification belongs to the server. Subject identifiers
//     are normalized once at the decode boundary (user_id, uid, id, sub).
//     A missing exp claim means the token does not expire client side.
//
// Guarding:
//   - Evaluate is a pure decision over (session, allow-list): pending while
//     a login is in flight, redirect-to-login when unauthenticated, deny
//     when the role fails the allow-list, admit otherwise. RouteGuard wraps
//     it as go-router middleware and keeps the requested destination in a
//     cookie for the post-login return.
package session
