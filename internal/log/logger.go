// Package log builds the application's structured logger.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates a zap logger. Debug mode switches to the human-readable
// development encoder at debug level.
func New(debug bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
