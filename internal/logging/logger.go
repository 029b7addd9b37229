package logging

import (
	"go.uber.org/zap"
)

var base *zap.Logger = zap.NewNop()

// Init builds the process logger. Development mode uses the console
// encoder; production emits JSON.
func Init(production bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if production {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	base = l
	return nil
}

// L returns the process logger. Safe to call before Init; it returns a
// no-op logger then, which keeps tests quiet.
func L() *zap.Logger {
	return base
}

func Sync() {
	_ = base.Sync()
}
