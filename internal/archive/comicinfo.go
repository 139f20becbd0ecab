package archive

import (
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

type comicInfo struct {
	Title  string `xml:"Title"`
	Series string `xml:"Series"`
	Number string `xml:"Number"`
}

// comicInfoTitle reads the title from a root level ComicInfo.xml. Missing or
// malformed metadata yields an empty title; it never fails the open.
func comicInfoTitle(files []*zip.File, limit int64) string {
	for _, f := range files {
		if !strings.EqualFold(path.Clean(f.Name), "ComicInfo.xml") {
			continue
		}
		if f.UncompressedSize64 > uint64(limit) {
			return ""
		}

		rc, err := f.Open()
		if err != nil {
			return ""
		}
		defer rc.Close()

		var info comicInfo
		if err := xml.NewDecoder(io.LimitReader(rc, limit)).Decode(&info); err != nil {
			return ""
		}

		switch {
		case strings.TrimSpace(info.Title) != "":
			return strings.TrimSpace(info.Title)
		case info.Series != "" && info.Number != "":
			return strings.TrimSpace(info.Series) + " #" + strings.TrimSpace(info.Number)
		default:
			return strings.TrimSpace(info.Series)
		}
	}
	return ""
}
