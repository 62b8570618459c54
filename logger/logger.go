package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"healthcare-booking/config"

	"github.com/gofiber/fiber/v2/log"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Console only until Configure runs
func init() {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.LevelInfo)
}

// ✅ Configure logs to the console and a daily file under cfg.LogDir (default log/app). Call it
// after config.Load so values from .env apply.
func Configure(cfg *config.Config) {
	dir := cfg.LogDir
	if dir == "" {
		dir = filepath.Join("log", "app")
	}

	mu.Lock()
	defer mu.Unlock()

	var out io.Writer = os.Stdout
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		fmt.Println("❌ Could not create log directory:", err)
	} else {
		fileName := filepath.Join(dir, fmt.Sprintf("app_%s.log", time.Now().Format("02-01-2006")))
		file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Println("❌ Could not open log file:", err)
		} else {
			out = io.MultiWriter(os.Stdout, file)
			if logFile != nil {
				logFile.Close()
			}
			logFile = file
		}
	}

	log.SetOutput(out)
	log.SetLevel(ParseLevel(cfg.LogLevel))
}

// ParseLevel maps LOG_LEVEL values onto fiber log levels; unknown values fall back to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

func Success(message string) {
	log.Info("✅ " + message)
}

func Error(message string, err error) {
	if err != nil {
		log.Error("❌ " + message + ": " + err.Error())
		return
	}
	log.Error("❌ " + message)
}

func Warning(message string) {
	log.Warn("⚠️ " + message)
}

func Debug(message string) {
	log.Debug("🐛 " + message)
}

func Info(message string) {
	log.Info("ℹ️ " + message)
}

func Fatal(message string, err error) {
	if err != nil {
		message = message + ": " + err.Error()
	}
	log.Error("💥 " + message)
	os.Exit(1)
}

func Printf(format string, args ...interface{}) {
	log.Info(fmt.Sprintf("📝 "+format, args...))
}
