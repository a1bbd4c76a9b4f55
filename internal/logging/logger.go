package logging

import "go.uber.org/zap"

// New builds the process logger. Development mode gets a human readable
// encoder and debug level; everything else gets JSON at info level.
func New(env string) *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	return logger.Sugar()
}

// Nop is used by tests and by constructors that receive a nil logger.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
