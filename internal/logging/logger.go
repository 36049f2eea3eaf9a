package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Production uses the JSON encoder; otherwise
// the development console encoder is used.
func New(production bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}
	return logger.Sugar(), nil
}

// NewFile builds a development logger writing to path. The terminal client
// uses it so log lines never end up on the screen it draws.
func NewFile(path string) (*zap.SugaredLogger, error) {
	if path == "" {
		return zap.NewNop().Sugar(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("error creating file logger: %w", err)
	}
	return logger.Sugar(), nil
}
