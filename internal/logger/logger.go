// Package logger builds the application logger.
package logger

import "go.uber.org/zap"

// New returns a zap logger tuned for the environment: JSON at info level
// in prod, console at debug level everywhere else.
func New(env string) (*zap.Logger, error) {
	if env == "prod" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
