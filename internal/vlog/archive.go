package vlog

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Archive entry names
const (
	SavedGame  = "savedGame"
	ModuleData = "moduledata"
	SaveData   = "savedata"
)

// BoilerplateFiles are copied verbatim from the template directory into every log
var BoilerplateFiles = []string{ModuleData, SaveData}

// Pack writes a .vlog at dst holding savedGame plus the boilerplate files from templateDir
func Pack(dst, savedGame, templateDir string) (err error) {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create vlog %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close vlog %s: %w", dst, cerr)
		}
	}()

	zw := zip.NewWriter(out)
	for _, name := range BoilerplateFiles {
		if err := copyInto(zw, name, filepath.Join(templateDir, name)); err != nil {
			return err
		}
	}
	w, err := zw.Create(SavedGame)
	if err != nil {
		return fmt.Errorf("add %s to %s: %w", SavedGame, dst, err)
	}
	if _, err := io.WriteString(w, savedGame); err != nil {
		return fmt.Errorf("write %s to %s: %w", SavedGame, dst, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish vlog %s: %w", dst, err)
	}
	return nil
}

func copyInto(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open template file %s: %w", src, err)
	}
	defer in.Close()
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

// Unpack extracts every entry of the .vlog at src into dir and returns the
// savedGame contents. Entries escaping dir are rejected.
func Unpack(src, dir string) (string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("open vlog %s: %w", src, err)
	}
	defer zr.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	var saved string
	found := false
	for _, zf := range zr.File {
		target := filepath.Join(root, zf.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return "", fmt.Errorf("vlog %s: entry %q escapes extraction directory", src, zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("extract %s: %w", zf.Name, err)
			}
			continue
		}
		data, err := extract(zf, target)
		if err != nil {
			return "", fmt.Errorf("extract %s from %s: %w", zf.Name, src, err)
		}
		if zf.Name == SavedGame {
			saved, found = string(data), true
		}
	}
	if !found {
		return "", fmt.Errorf("vlog %s has no %s entry", src, SavedGame)
	}
	return saved, nil
}

func extract(zf *zip.File, target string) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	return data, os.WriteFile(target, data, 0o644)
}
