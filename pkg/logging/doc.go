// Package logging builds the process logger from validated settings.
package logging
