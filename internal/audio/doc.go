// Package audio implements the playback engine and its backend cascade: an
// in-process mixer, an external player process with on-demand transcoding,
// or nothing when the host has no audio capability.
package audio
