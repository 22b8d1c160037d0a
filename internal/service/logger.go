package service

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFormat 日志格式
type LogFormat string

const (
	LogFormatConsole LogFormat = "console" // 文本格式
	LogFormatJSON    LogFormat = "json"    // JSON格式
)

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string    `mapstructure:"level" validate:"oneof=debug info warn error"` // 日志级别
	Format       LogFormat `mapstructure:"format" validate:"oneof=console json"`        // 日志格式
	ServiceName  string    `mapstructure:"service_name"`                                 // 服务名称
	FilePath     string    `mapstructure:"file_path"`                                    // 文件路径，为空时只输出到标准输出
	MaxSize      int       `mapstructure:"max_size"`                                     // 单个文件最大MB
	MaxBackups   int       `mapstructure:"max_backups"`                                  // 最大备份数
	MaxAge       int       `mapstructure:"max_age"`                                      // 最大保留天数
	Compress     bool      `mapstructure:"compress"`                                     // 是否压缩
	EnableCaller bool      `mapstructure:"enable_caller"`                                // 启用调用者信息
}

// NewLogger 创建日志器实例
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stdout))
}

func newLogger(cfg LoggerConfig, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(cfg.Format), console, level)}

	// 文件输出固定为 JSON，按大小滚动
	if cfg.FilePath != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder(LogFormatJSON), writer, level))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	logger := zap.New(zapcore.NewTee(cores...), opts...)
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	return logger, nil
}

func encoder(format LogFormat) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == LogFormatConsole {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}
