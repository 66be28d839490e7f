package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/JetbluejetYJ/dokdo"
)

func main() {
	app := kingpin.New("dokdo", "Cross-association analysis between a feature table and a target matrix")
	app.Version("v0.1")

	cfg := &cmdConfig{}
	cfg.Flags(app)
	(&cmdTable{cmdConfig: cfg}).Register(app)
	(&cmdHeatmap{cmdConfig: cfg}).Register(app)
	(&cmdRegplot{cmdConfig: cfg}).Register(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// registerLogger installs the library logger.
func registerLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	dokdo.Log = logger
	return logger, nil
}
