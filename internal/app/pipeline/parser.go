package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/metrics"
)

// ctxCheckInterval is how many lines are scanned between context checks.
const ctxCheckInterval = 10000

// lineHandler receives every non-empty line of a source together with its
// 1-based line number.
type lineHandler func(line string, lineNum int64) error

// BaseParser contains common functionality for all parsers
type BaseParser struct {
	cfg     *config.Config
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewBaseParser(cfg *config.Config, collector *metrics.Collector) *BaseParser {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &BaseParser{
		cfg:     cfg,
		metrics: collector,
		logger:  slog.Default(),
	}
}

// ProgressBar creates a progress bar for file processing
func (p *BaseParser) ProgressBar(file *os.File, description string) (*progressbar.ProgressBar, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	return progressbar.NewOptions64(
		stat.Size(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(p.cfg.ShowProgress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	), nil
}

// scanFile opens filePath and feeds its lines to handle.
func (p *BaseParser) scanFile(ctx context.Context, filePath, description string, handle lineHandler) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	bar, err := p.ProgressBar(file, description)
	if err != nil {
		return err
	}

	if err := p.scan(ctx, file, bar, handle); err != nil {
		return err
	}
	_ = bar.Finish()
	return nil
}

// scan reads r line by line. Empty lines and '#' comments are skipped; a
// trailing '\r' is dropped. bar may be nil.
func (p *BaseParser) scan(ctx context.Context, r io.Reader, bar *progressbar.ProgressBar, handle lineHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lineNum int64
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if bar != nil {
			_ = bar.Add(len(line) + 1)
		}
		if lineNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := handle(line, lineNum); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	return ctx.Err()
}

// debugEnabled reports whether per-line diagnostics should be produced.
func (p *BaseParser) debugEnabled(ctx context.Context) bool {
	return p.logger.Enabled(ctx, slog.LevelDebug)
}

// ParseGeonameID parses a geonameid column. Unlike population-style columns
// an empty value is an error.
func ParseGeonameID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty geonameid")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid geonameid %q: %w", s, err)
	}
	return id, nil
}

// firstField returns s up to the first tab.
func firstField(s string) string {
	field, _, _ := strings.Cut(s, "\t")
	return field
}
