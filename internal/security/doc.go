// Package security confines files written by billcycle to the working
// directory. Output paths are validated lexically and then written through an
// os.Root, so neither ".." segments nor symlinks can redirect a decrypted
// payload outside the directory the user ran the command in.
package security
