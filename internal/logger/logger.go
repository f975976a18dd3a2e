package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init builds the global zap logger. Development gets the human-readable
// console encoder, everything else gets production JSON.
func Init(environment string) error {
	var (
		logger *zap.Logger
		err    error
	)

	if environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(logger)

	return nil
}
