package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel определяет уровень логирования
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String возвращает имя уровня в том виде, в каком оно пишется в лог
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger представляет структурированный логгер с одним или несколькими приемниками
type Logger struct {
	level  LogLevel
	logger *log.Logger
	exit   func(int)
}

// New создает логгер, который пишет каждую строку во все приемники.
// Без приемников пишет в stdout.
func New(level LogLevel, sinks ...io.Writer) *Logger {
	var out io.Writer = os.Stdout
	switch len(sinks) {
	case 0:
	case 1:
		out = sinks[0]
	default:
		out = io.MultiWriter(sinks...)
	}

	return &Logger{
		level:  level,
		logger: log.New(out, "", 0),
		exit:   os.Exit,
	}
}

// Nop возвращает логгер, который ничего не пишет
func Nop() *Logger {
	return New(LevelFatal+1, io.Discard)
}

// Level возвращает минимальный записываемый уровень
func (l *Logger) Level() LogLevel {
	return l.level
}

// Debug записывает debug сообщение
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info записывает info сообщение
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn записывает warning сообщение
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error записывает error сообщение
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Fatal записывает fatal сообщение и завершает программу
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(LevelFatal, msg, fields...)
	l.exit(1)
}

// WithFields возвращает логгер с предустановленными полями
func (l *Logger) WithFields(fields ...Field) *FieldLogger {
	return &FieldLogger{
		logger: l,
		fields: fields,
	}
}

func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	l.output(3, level, msg, fields)
}

// output форматирует и пишет одну строку; depth указывает на код,
// вызвавший публичный метод
func (l *Logger) output(depth int, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	_, file, line, ok := runtime.Caller(depth)
	caller := "unknown"
	if ok {
		caller = fmt.Sprintf("%s:%d", getShortFileName(file), line)
	}

	fieldsStr := ""
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, field.String())
		}
		fieldsStr = " " + strings.Join(parts, " ")
	}

	l.logger.Println(fmt.Sprintf("[%s] %s %s %s%s", timestamp, level, caller, msg, fieldsStr))
}

// getShortFileName возвращает короткое имя файла
func getShortFileName(file string) string {
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return file
}

// FieldLogger оборачивает логгер с предустановленными полями
type FieldLogger struct {
	logger *Logger
	fields []Field
}

func (fl *FieldLogger) merge(fields []Field) []Field {
	all := make([]Field, 0, len(fl.fields)+len(fields))
	all = append(all, fl.fields...)
	return append(all, fields...)
}

func (fl *FieldLogger) Debug(msg string, fields ...Field) {
	fl.logger.output(2, LevelDebug, msg, fl.merge(fields))
}

func (fl *FieldLogger) Info(msg string, fields ...Field) {
	fl.logger.output(2, LevelInfo, msg, fl.merge(fields))
}

func (fl *FieldLogger) Warn(msg string, fields ...Field) {
	fl.logger.output(2, LevelWarn, msg, fl.merge(fields))
}

func (fl *FieldLogger) Error(msg string, fields ...Field) {
	fl.logger.output(2, LevelError, msg, fl.merge(fields))
}

// Field представляет поле логирования
type Field struct {
	Key   string
	Value interface{}
}

// String возвращает строковое представление поля
func (f Field) String() string {
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

// Вспомогательные функции для создания полей
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
