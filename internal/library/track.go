// Package library is the ambient "surrounding terminal music player" layer
// around the playback engine: it scans a set of root directories for audio
// files, reads their tags, and keeps a catalog so a CLI front-end has
// something to browse and queue into the engine.
package library

import "time"

// Track is one catalogued audio file.
type Track struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	Genre       string
	TrackNumber int
	Year        int
	ScannedAt   time.Time
}
