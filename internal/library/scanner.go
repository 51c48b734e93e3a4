package library

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
)

var scannableExt = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".wav":  true,
	".wave": true,
	".opus": true,
	".m4a":  true,
}

// IsScannable reports whether path has an extension the catalog will read
// tags from. Unrecognised extensions are skipped by Walk rather than erroring,
// since a library root commonly holds playlists, art, and other clutter.
func IsScannable(path string) bool {
	return scannableExt[strings.ToLower(filepath.Ext(path))]
}

// ScanFile reads tag metadata from a single audio file. Title falls back to
// the filename stem when the file carries no title tag, and fields tag.ReadFrom
// cannot populate are left at their zero value rather than erroring, since
// partial tags are the common case in the wild rather than the exception.
func ScanFile(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return &Track{
			Path:      path,
			Title:     titleFromFilename(path),
			ScannedAt: time.Now(),
		}, nil
	}

	title := m.Title()
	if title == "" {
		title = titleFromFilename(path)
	}
	trackNum, _ := m.Track()

	return &Track{
		Path:        path,
		Title:       title,
		Artist:      firstNonEmpty(m.AlbumArtist(), m.Artist()),
		Album:       m.Album(),
		Genre:       m.Genre(),
		TrackNumber: trackNum,
		Year:        m.Year(),
		ScannedAt:   time.Now(),
	}, nil
}

// Walk scans every scannable audio file under root, calling fn with each
// track successfully read. It does not abort the walk on a single file's scan
// error; the caller's fn is simply never invoked for that path.
func Walk(root string, fn func(*Track)) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsScannable(path) {
			return nil
		}
		track, scanErr := ScanFile(path)
		if scanErr != nil {
			return nil
		}
		fn(track)
		return nil
	})
}

func titleFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
