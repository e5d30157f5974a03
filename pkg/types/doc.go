// Package types defines the Store interface, the type descriptor and object
// record models, and the standard error kinds for the Typekeep registry.
package types
