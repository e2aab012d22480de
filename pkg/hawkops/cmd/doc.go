// Package cmd implements the cobra command tree for the hawkops CLI:
// configuration, authentication, applications, scans, teams, users, version
// reporting and shell completion.
package cmd
