package archive

import (
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zip"
)

var pageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// pageFiles returns the image entries of an archive in reading order.
func pageFiles(files []*zip.File) []*zip.File {
	pages := make([]*zip.File, 0, len(files))
	for _, f := range files {
		if isPage(f) {
			pages = append(pages, f)
		}
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return naturalLess(pages[i].Name, pages[j].Name)
	})
	return pages
}

func isPage(f *zip.File) bool {
	if f.FileInfo().IsDir() {
		return false
	}

	name := strings.ReplaceAll(f.Name, "\\", "/")
	if strings.HasPrefix(name, "__MACOSX/") {
		return false
	}

	base := path.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}

	return pageExtensions[strings.ToLower(path.Ext(base))]
}

// naturalLess orders names case-insensitively, comparing digit runs by value
// so that "page2" sorts before "page10".
func naturalLess(a, b string) bool {
	ar, br := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ar[i] != br[j] {
			return ar[i] < br[j]
		}
		i++
		j++
	}
	if len(ar)-i != len(br)-j {
		return len(ar)-i < len(br)-j
	}
	return a < b
}
