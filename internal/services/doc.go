// Package services defines the shared error taxonomy used by components that
// talk to external tools and files.
package services
