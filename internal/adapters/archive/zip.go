// Package archive unpacks zipped GeoNames dumps next to the archive.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/terratensor/geolocale/internal/config"
)

var ErrNoTextFile = errors.New("archive has no .txt member")

type Extractor struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewExtractor(cfg *config.Config) *Extractor {
	return &Extractor{cfg: cfg, logger: slog.Default()}
}

// Resolve returns path unchanged unless it is a .zip archive, in which case
// the archive is extracted into its directory and the path of the text dump
// is returned. A member matching the archive name ("cities500.zip" ->
// "cities500.txt") is preferred over other .txt members.
func (e *Extractor) Resolve(ctx context.Context, path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return path, nil
	}

	files, err := e.ExtractZip(ctx, path)
	if err != nil {
		return "", err
	}

	want := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".txt"
	var fallback string
	for _, f := range files {
		if filepath.Base(f) == want {
			return f, nil
		}
		if fallback == "" && strings.EqualFold(filepath.Ext(f), ".txt") {
			fallback = f
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("%w: %s", ErrNoTextFile, path)
	}
	return fallback, nil
}

// ExtractZip распаковывает zip архив и возвращает список распакованных файлов
func (e *Extractor) ExtractZip(ctx context.Context, zipPath string) ([]string, error) {
	// Открываем zip архив
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer reader.Close()

	destDir := filepath.Dir(zipPath)
	var extractedFiles []string

	for _, zipFile := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if zipFile.FileInfo().IsDir() {
			continue
		}

		name := filepath.Base(zipFile.Name)
		if !filepath.IsLocal(zipFile.Name) || name == "." {
			return nil, fmt.Errorf("unsafe path in zip: %q", zipFile.Name)
		}
		destPath := filepath.Join(destDir, name)

		// Проверяем существует ли уже распакованный файл
		if _, err := os.Stat(destPath); err == nil {
			e.logger.Debug("Already extracted", "file", destPath)
			extractedFiles = append(extractedFiles, destPath)
			continue
		}

		if err := e.extractFile(zipFile, destPath); err != nil {
			return nil, err
		}

		extractedFiles = append(extractedFiles, destPath)
		e.logger.Info("Extracted", "file", destPath)
	}

	return extractedFiles, nil
}

func (e *Extractor) extractFile(zipFile *zip.File, destPath string) error {
	// Открываем файл в архиве
	rc, err := zipFile.Open()
	if err != nil {
		return fmt.Errorf("failed to open file %s in zip: %w", zipFile.Name, err)
	}
	defer rc.Close()

	// Пишем во временный файл, чтобы прерванная распаковка не выглядела готовой
	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", tmpPath, err)
	}

	bar := progressbar.NewOptions64(
		int64(zipFile.UncompressedSize64),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(e.cfg.ShowProgress),
		progressbar.OptionSetDescription(fmt.Sprintf("Extracting %s", zipFile.Name)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
		progressbar.OptionFullWidth(),
	)

	// Копируем с отслеживанием прогресса
	_, err = io.Copy(io.MultiWriter(out, bar), rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to extract file %s: %w", zipFile.Name, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}
	return nil
}
