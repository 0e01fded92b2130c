package media

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds display information for the summary line.
type Metadata struct {
	Title  string
	Artist string
}

// ReadMetadata returns tag-derived display info for path. Only MP3 carries
// ID3v2 among the supported formats; everything else uses the bare filename.
func ReadMetadata(path string) Metadata {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
			m := Metadata{
				Title:  strings.TrimSpace(tag.Title()),
				Artist: strings.TrimSpace(tag.Artist()),
			}
			tag.Close()
			if m.Title != "" {
				return m
			}
		}
	}

	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}
