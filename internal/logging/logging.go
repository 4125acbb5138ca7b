package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Config selects log level and outputs.
type Config struct {
	Level          string
	GraylogEnabled bool
	GraylogAddress string
}

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel converts a config log level to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Manager owns the process logger and any network writers behind it.
type Manager struct {
	logger  zerolog.Logger
	graylog *gelf.Writer
	ready   bool
}

// NewManager creates a Manager whose logger discards everything until Setup.
func NewManager() *Manager {
	return &Manager{logger: zerolog.Nop()}
}

// Setup builds the logger. Console output goes to console (stdout when nil), plain
// text to file when given, and GELF to Graylog when enabled.
func (m *Manager) Setup(console, file io.Writer, cfg Config) error {
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		},
	}
	if file != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}
	if cfg.GraylogEnabled {
		w, err := gelf.NewWriter(cfg.GraylogAddress)
		if err != nil {
			return fmt.Errorf("failed to connect to graylog at %s: %w", cfg.GraylogAddress, err)
		}
		w.Facility = "sgrid"
		m.graylog = w
		writers = append(writers, w)
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	m.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Logger()
	m.ready = true

	m.logger.Info().Str("loglevel", m.logger.GetLevel().String()).Msg("Logging set up")
	return nil
}

// Logger returns the configured logger.
func (m *Manager) Logger() zerolog.Logger {
	return m.logger
}

// Ready reports whether Setup has completed.
func (m *Manager) Ready() bool {
	return m.ready
}

// Close releases the Graylog connection, if any.
func (m *Manager) Close() error {
	if m.graylog == nil {
		return nil
	}
	err := m.graylog.Close()
	m.graylog = nil
	return err
}
