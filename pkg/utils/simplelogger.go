// Package utils предоставляет простой файловый логгер.
//
// Логгер пишет в .log файл (TUI занимает терминал, поэтому stdout недоступен).
// Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logMutex    sync.Mutex
	logOut      io.Writer
	logFile     *os.File
	debugOn     bool
	initialized bool
)

// InitLogger создает/открывает .log файл в директории dir.
//
// Имя файла: poncho-trends-YYYY-MM-DD-HH-MM.log.
// Пустой dir означает текущую директорию.
// debug включает сообщения уровня DEBUG.
func InitLogger(dir string, debug bool) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized {
		return nil
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("poncho-trends-%s.log", timestamp))

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	logOut = f
	debugOn = debug
	initialized = true

	// Пишем напрямую, мьютекс уже захвачен
	writeLine("INFO", "Logger initialized", "file", filename, "debug", debug)
	return nil
}

// SetOutput направляет лог в произвольный writer (тесты, headless режим).
func SetOutput(w io.Writer, debug bool) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logOut = w
	debugOn = debug
	initialized = w != nil
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение. Пишется только при app.debug: true.
func Debug(msg string, keyvals ...any) {
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

func log(level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logOut == nil {
		return
	}
	if level == "DEBUG" && !debugOn {
		return
	}
	writeLine(level, msg, keyvals...)
}

// writeLine форматирует и пишет строку. Вызывается под logMutex.
//
// Формат: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
func writeLine(level, msg string, keyvals ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] %s: %s", timestamp, level, msg)

	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}
	line += "\n"

	if _, err := io.WriteString(logOut, line); err != nil {
		// Fallback: если файл недоступен, пишем в stderr
		fmt.Fprint(os.Stderr, line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: write failed: %v]\n", err)
		return
	}

	if logFile != nil && logOut == io.Writer(logFile) {
		if err := logFile.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
		}
	}
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	logOut = nil
	initialized = false
}
