package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"
)

// maxLogSize 超过该大小时启动时轮转
const maxLogSize = 10 * 1024 * 1024

var (
	mu      sync.Mutex
	logFile *os.File
	logPath string
)

// Init 将标准 logger 重定向到 path（同时输出到 stderr）。path 为空时保持 stderr。
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		if err := os.Rename(path, backupPath); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logPath = path
	log.SetOutput(io.MultiWriter(os.Stderr, f))

	log.Printf("[INFO] Logger initialized, log file: %s", path)
	return nil
}

// Close 关闭日志文件并恢复 stderr 输出
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		log.SetOutput(os.Stderr)
		_ = logFile.Close()
		logFile = nil
		logPath = ""
	}
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// GetLogPath 当前日志文件路径，未写文件时为空
func GetLogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}
