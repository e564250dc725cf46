package course

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// writeUnique writes img into dir under base+".png", claiming the name with
// O_EXCL. If the name is taken (two captures in the same wall-clock second),
// it appends an ordinal suffix (_2, _3, ...) until a free name is found, so
// same-second runs never clobber each other.
func writeUnique(dir, base string, img []byte) (path, filename string, err error) {
	for n := 1; ; n++ {
		filename = base + ".png"
		if n > 1 {
			filename = fmt.Sprintf("%s_%d.png", base, n)
		}
		path = filepath.Join(dir, filename)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return "", "", fmt.Errorf("create image file: %w", err)
		}

		if _, err := f.Write(img); err != nil {
			f.Close()
			os.Remove(path)
			return "", "", fmt.Errorf("write image file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", "", fmt.Errorf("close image file: %w", err)
		}
		return path, filename, nil
	}
}
