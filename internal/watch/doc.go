// Package watch turns raw filesystem notifications for a single file into
// "content finalized" signals. Bursts of write events are debounced so that
// listeners only read a file once its writer has gone quiet.
package watch
