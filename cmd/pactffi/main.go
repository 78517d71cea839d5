// Command pactffi builds the C shared library:
//
//	go build -buildmode=c-shared -o libpactffi.so ./cmd/pactffi
//
// The generated libpactffi.h declares every pactffi_* export. The types it
// uses come from pactffi_types.h.
package main

func main() {}
