// Package filesystem provides implementations of the types.FS interface.
//
// NewOS returns the production implementation backed by the os package.
// NewAferoFS wraps any afero.Fs, which lets unit tests run against
// memory-backed filesystems where full symlink fidelity is not required.
package filesystem
