package logger

import (
	"fmt"
	"io"
	"os"
)

// Options описывает уровень и приемники логгера процесса
type Options struct {
	Level    LogLevel
	Console  io.Writer // nil отключает вывод в консоль
	FilePath string    // пустая строка отключает файл
}

// Open создает логгер по опциям. Файл открывается с усечением, как при
// каждом новом запуске. Возвращаемый closer закрывает файл.
func Open(opts Options) (*Logger, io.Closer, error) {
	var sinks []io.Writer
	if opts.Console != nil {
		sinks = append(sinks, opts.Console)
	}

	var closer io.Closer = nopCloser{}
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.FilePath, err)
		}
		sinks = append(sinks, f)
		closer = f
	}

	if len(sinks) == 0 {
		sinks = append(sinks, io.Discard)
	}

	return New(opts.Level, sinks...), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
