package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// WriteZipFromDirectory streams every regular file under dirPath into a zip
// archive written to w. Entry names are slash-separated paths relative to dirPath.
func WriteZipFromDirectory(w io.Writer, dirPath string) error {
	zipWriter := zip.NewWriter(w)

	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		// Temp files from an in-flight mirror write are not part of the tree
		if filepath.Ext(path) == ".tmp" {
			return nil
		}

		relPath, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}

		fileWriter, err := zipWriter.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(fileWriter, f)
		return err
	})
	if err != nil {
		zipWriter.Close()
		return err
	}

	return zipWriter.Close()
}
