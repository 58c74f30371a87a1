// Package security confines file operations to one side of a vault.
//
// A Root wraps os.Root, so reads, writes and removals can never leave the
// side directory even when a stored path contains ".." or a symlink points
// elsewhere. Writes are atomic: data goes to a temporary sibling which is
// renamed over the target.
package security
