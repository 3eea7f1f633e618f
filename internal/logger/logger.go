package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controla el destino y formato de los logs.
type Options struct {
	// FilePath activa un archivo JSON rotado ademas de la consola.
	FilePath   string
	Production bool
}

// New construye el logger del servicio. Sin FilePath se comporta como zap.NewProduction / NewDevelopment.
func New(opts Options) (*zap.Logger, error) {
	if opts.FilePath == "" {
		if opts.Production {
			return zap.NewProduction()
		}
		return zap.NewDevelopment()
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // dias
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	consoleEncoder := jsonEncoder
	consoleLevel := zap.InfoLevel
	if !opts.Production {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleLevel = zap.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), zap.InfoLevel),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
	)
	return zap.New(core, zap.AddCaller()), nil
}
