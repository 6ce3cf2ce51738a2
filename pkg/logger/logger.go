/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package logger

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Channel names accepted by NewLogs.
const (
	ChanLog   = "log"
	ChanPanic = "panic"
	ChanTx    = "tx"
	ChanQuery = "query"
	ChanEvent = "event"
)

type Logger interface {
	Log(level string, msg string)
	Pnc(msg string)
	Tx(level string, msg string)
	Query(level string, msg string)
	Event(level string, msg string)
}

type logs struct {
	logpath map[string]string
	log     map[string]*zap.Logger
}

// NewLogs opens one rotating file per channel. Channels missing from
// logfiles discard their messages.
func NewLogs(logfiles map[string]string) (Logger, error) {
	var (
		logpath = make(map[string]string, 0)
		logCli  = make(map[string]*zap.Logger)
	)
	for name, fpath := range logfiles {
		dir := getFilePath(fpath)
		_, err := os.Stat(dir)
		if err != nil {
			err = os.MkdirAll(dir, configs.DirMode)
			if err != nil {
				return nil, errors.Errorf("%v,%v", dir, err)
			}
		}
		Encoder := getEncoder()
		newCore := zapcore.NewTee(
			zapcore.NewCore(Encoder, getWriteSyncer(fpath), zap.NewAtomicLevel()),
		)
		logpath[name] = fpath
		logCli[name] = zap.New(newCore, zap.AddCaller())
		logCli[name].Sugar().Infof("%v", fpath)
	}
	return &logs{
		logpath: logpath,
		log:     logCli,
	}, nil
}

// Nop discards everything.
func Nop() Logger {
	return &logs{log: map[string]*zap.Logger{}}
}

// WorkspaceLogs opens every channel under dir.
func WorkspaceLogs(dir string) (Logger, error) {
	files := make(map[string]string, 5)
	for _, name := range []string{ChanLog, ChanPanic, ChanTx, ChanQuery, ChanEvent} {
		files[name] = filepath.Join(dir, name+".log")
	}
	return NewLogs(files)
}

func (l *logs) write(channel, level, msg string) {
	v, ok := l.log[channel]
	if !ok {
		return
	}
	_, file, line, _ := runtime.Caller(2)
	switch level {
	case "info":
		v.Sugar().Infof("[%v:%d] %s", filepath.Base(file), line, msg)
	case "err":
		v.Sugar().Errorf("[%v:%d] %s", filepath.Base(file), line, msg)
	}
}

func (l *logs) Log(level string, msg string) {
	l.write(ChanLog, level, msg)
}

func (l *logs) Pnc(msg string) {
	l.write(ChanPanic, "err", msg)
}

func (l *logs) Tx(level string, msg string) {
	l.write(ChanTx, level, msg)
}

func (l *logs) Query(level string, msg string) {
	l.write(ChanQuery, level, msg)
}

func (l *logs) Event(level string, msg string) {
	l.write(ChanEvent, level, msg)
}

func getFilePath(fpath string) string {
	path, _ := filepath.Abs(fpath)
	index := strings.LastIndex(path, string(os.PathSeparator))
	ret := path[:index]
	return ret
}

func getEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(
		zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller_line",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    cEncodeLevel,
			EncodeTime:     cEncodeTime,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   nil,
		})
}

func getWriteSyncer(fpath string) zapcore.WriteSyncer {
	lumberJackLogger := &lumberjack.Logger{
		Filename:   fpath,
		MaxSize:    10,
		MaxBackups: 99,
		MaxAge:     180,
		LocalTime:  true,
		Compress:   true,
	}
	return zapcore.AddSync(lumberJackLogger)
}

func cEncodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

func cEncodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format("2006-01-02 15:04:05") + "]")
}
