// Package filesync keeps a typed in-memory value and a text file consistent
// in both directions.
//
// A [File] pairs a watcher, which publishes external edits of the file as
// raw text, with a saver, which writes raw text produced in memory back to
// disk. A [Synchronizer] sits on top of a File and pairs a deserializer,
// which parses raw text into a [Result], with a serializer, which turns
// application edits of the typed value back into raw text:
//
//	disk -> watcher -> raw text -> deserializer -> typed result
//	typed result -> serializer -> raw text -> saver -> disk
//
// The ring terminates because each direction tells the other which event
// is its own echo. The saver arms a flag before every write that makes the
// watcher ignore the next finalized notification, and the deserializer arms
// a flag that makes the serializer drop the next typed change. Raw text
// carries its [Origin] so the saver never writes back what it just read and
// the deserializer never re-parses what the serializer just produced.
//
// All suppression state is owned by the File instance, so several files can
// be synchronized in one process without interfering.
package filesync
