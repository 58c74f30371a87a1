// Package git checks that a vault's plaintext side stays out of version
// control. It shells out to the git binary and degrades to "not a
// repository" when git is unavailable.
package git
