// Package git checks whether files billcycle writes would be picked up by git.
//
// Plaintext milestone payloads reveal a billing schedule, so writing one into a
// repository without a matching .gitignore rule earns a warning. The checks
// shell out to the git binary and report "not a repository" when git is
// unavailable.
package git
