// Package portalsdk is the client SDK for the AURA auth service. It wraps
// the HTTP API with typed calls, persists the session across restarts, and
// decides which portal area a signed-in account lands in.
package portalsdk
