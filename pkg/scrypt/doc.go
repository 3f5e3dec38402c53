// Package scrypt hashes and verifies passwords using the scrypt key
// derivation function.
//
// Digests use the self-describing format:
//
//	$s0$<paramshex>$<base64url salt>$<base64url derived key>
//
// where paramshex encodes log2(N), r and p. Verification is constant-time
// over the derived key, and VerifyAny performs a dummy derivation for
// callers that need uniform timing when no stored digest exists.
package scrypt
