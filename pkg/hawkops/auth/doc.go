// Package auth manages the hawkops credential lifecycle: API-key login,
// refresh-token exchange, expiry detection from the token's claims, and
// persistence of the resulting tokens to the config file or the OS keychain.
package auth
