package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

// Colorize groups the color functions shared by the pretty printers.
var Colorize = struct {
	Location func(...interface{}) string
	State    func(...interface{}) string
	Edge     func(...interface{}) string
	Target   func(...interface{}) string
	Safe     func(...interface{}) string
	Unknown  func(...interface{}) string
	Faint    func(...interface{}) string
}{
	Location: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	State: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Edge: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
	Target: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgHiRed, color.Bold).SprintFunc())(is...)
	},
	Safe: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgHiGreen, color.Bold).SprintFunc())(is...)
	},
	Unknown: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgHiYellow, color.Bold).SprintFunc())(is...)
	},
	Faint: func(is ...interface{}) string {
		return CanColorize(color.New(color.FgHiWhite, color.Faint).SprintFunc())(is...)
	},
}

func TimeTrack(start time.Time, name string) {
	log.Debugf("%s took %s", name, time.Since(start))
}

// SetupLogging configures the global logger from the parsed options.
func SetupLogging() error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	if opts.verbose && level < log.DebugLevel {
		level = log.DebugLevel
	}

	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:    opts.noColorize,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05",
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})
	return nil
}
