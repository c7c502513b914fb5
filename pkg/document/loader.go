package document

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// readFile memory-maps path and returns the bytes plus a release
// function. Exported documents can run to hundreds of megabytes, and
// mmap lets the JSON decoder stream pages in on demand instead of
// copying the whole file up front. Falls back to os.ReadFile when
// mapping fails (unusual filesystems, zero-length files).
func readFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, func() {}, fmt.Errorf("empty document file")
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, nil, rerr
		}
		return data, func() {}, nil
	}

	release := func() {
		m.Unmap()
		f.Close()
	}
	return m, release, nil
}
