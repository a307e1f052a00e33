package nntplog

import (
	"fmt"
	"io"
	golog "log"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	loggers = make(map[string]*logger)
)

// AddLogger adds a named logger that writes to output, filtering out
// messages below level.
func AddLogger(name string, output io.Writer, level Level, color bool) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &logger{
		sink:  golog.New(output, "", golog.LstdFlags),
		Level: level,
		Color: color,
	}
}

// AddSink adds a named logger that writes to an arbitrary sink (e.g. a
// *Ring), bypassing the timestamp prefix golog.Logger would otherwise add.
func AddSink(name string, s sink, level Level) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &logger{sink: s, Level: level}
}

// DelLogger removes a named logger previously installed with AddLogger or
// AddSink.
func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()

	delete(loggers, name)
}

// SetLevel changes the level of a named logger.
func SetLevel(name string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return fmt.Errorf("no such logger: %s", name)
	}
	l.Level = level
	return nil
}

// AddFilter suppresses any message containing the given substring from the
// named logger.
func AddFilter(name, filter string) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return fmt.Errorf("no such logger: %s", name)
	}
	for _, f := range l.filters {
		if f == filter {
			return nil
		}
	}
	l.filters = append(l.filters, filter)
	return nil
}

func emit(level Level, name, format string, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.log(level, name, format, arg...)
		}
	}
}

func emitln(level Level, name string, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.logln(level, name, arg...)
		}
	}
}

func Debug(format string, arg ...interface{}) { emit(DEBUG, "", format, arg...) }
func Info(format string, arg ...interface{})  { emit(INFO, "", format, arg...) }
func Warn(format string, arg ...interface{})  { emit(WARN, "", format, arg...) }
func Error(format string, arg ...interface{}) { emit(ERROR, "", format, arg...) }

// Fatal logs at FATAL and exits. Reserved for cmd/ initialization failures;
// library code never calls it.
func Fatal(format string, arg ...interface{}) {
	emit(FATAL, "", format, arg...)
	os.Exit(1)
}

func Debugln(arg ...interface{}) { emitln(DEBUG, "", arg...) }
func Infoln(arg ...interface{})  { emitln(INFO, "", arg...) }
func Warnln(arg ...interface{})  { emitln(WARN, "", arg...) }
func Errorln(arg ...interface{}) { emitln(ERROR, "", arg...) }
