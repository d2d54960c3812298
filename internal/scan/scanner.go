package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

const maxEntrySize = 512 * 1024 * 1024 // 512MB

// Archive is one exported chat bundle found in the input directory.
type Archive struct {
	Path  string
	Name  string // file name, e.g. "WhatsApp Chat - Mary.zip"
	Mtime int64
	Size  int64
}

// Source is a chat log read out of an archive in full.
type Source struct {
	Chat  string // chat name derived from the archive
	Entry string // path of the entry inside the archive
	Data  []byte
}

// Label names the source in logs and the run ledger.
func (s Source) Label() string {
	return s.Chat + "/" + s.Entry
}

// ScanArchives lists the .zip files directly inside dir, sorted by name.
// A missing input directory is an error.
func ScanArchives(dir string) ([]Archive, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input dir %s: not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var archives []Archive
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue // vanished between ReadDir and Info
		}
		archives = append(archives, Archive{
			Path:  filepath.Join(dir, e.Name()),
			Name:  e.Name(),
			Mtime: fi.ModTime().Unix(),
			Size:  fi.Size(),
		})
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}

// Extract reads every .txt entry of the archive into memory, in archive
// order. Directory entries and other files are ignored.
func Extract(a Archive) ([]Source, error) {
	zr, err := zip.OpenReader(a.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.Name, err)
	}
	defer zr.Close()

	chat := ChatName(a.Name)
	var sources []Source
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".txt") {
			continue
		}
		if f.UncompressedSize64 > maxEntrySize {
			return nil, fmt.Errorf("%s: entry %s too large (%d bytes)", a.Name, f.Name, f.UncompressedSize64)
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: read %s: %w", a.Name, f.Name, err)
		}
		sources = append(sources, Source{Chat: chat, Entry: f.Name, Data: data})
	}
	return sources, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
}

// ChatName derives the chat name from an export file name:
// "WhatsApp Chat - Mary.zip" becomes "Mary".
func ChatName(archiveName string) string {
	name := strings.TrimSuffix(archiveName, filepath.Ext(archiveName))
	name = strings.TrimPrefix(name, "WhatsApp Chat - ")
	return strings.TrimSpace(name)
}
