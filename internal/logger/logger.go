// Package logger 把标准 log 重定向到 ~/.floating-bridge 下的文件，避免输出破坏终端界面
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// maxLogSize 超过该大小的日志在启动时轮转
const maxLogSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
)

// Dir 日志目录
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".floating-bridge"), nil
}

// Init 打开 <Dir>/<name>.log 并设为标准 log 的输出
func Init(name string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(dir, name+".log")
	if err := rotate(logPath); err != nil {
		return err
	}
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	LogInfo("Logger initialized, log file: %s", logPath)
	return nil
}

// rotate 文件过大时改名为 <path>.<unix>
func rotate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return nil
	}
	backup := fmt.Sprintf("%s.%d", path, time.Now().Unix())
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return nil
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogInfo 普通日志
func LogInfo(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// LogError 错误日志
func LogError(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// LogPanic 记录 panic 和调用栈
func LogPanic(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// GetLogPath 当前日志文件路径
func GetLogPath() string {
	return logPath
}
