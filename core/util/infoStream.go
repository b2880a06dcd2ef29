package util

import (
	"fmt"
	"io"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("util")

// util/InfoStream.java

/*
Debugging API for the indexing chain, such as the flush coordinator
and the terms hash.

NOTE: Enabling infostreams may cause performance degradation in some
components.
*/
type InfoStream interface {
	io.Closer
	Clone() InfoStream
	Message(component, message string, args ...interface{})
	IsEnabled(component string) bool
}

/* Instance of InfoStream that does no logging at all. */
var NO_OUTPUT = NoOutput{}

type NoOutput struct{}

func (is NoOutput) Message(component, message string, args ...interface{}) {
	panic("message() should not be called when isEnabled returns false")
}

func (is NoOutput) IsEnabled(component string) bool { return false }
func (is NoOutput) Close() error                    { return nil }
func (is NoOutput) Clone() InfoStream               { return is }

/*
InfoStream that writes every message to the "infostream" go-logging
module at DEBUG level. Components can be restricted by name; an empty
list enables all of them.
*/
type LoggingInfoStream struct {
	logger     *logging.Logger
	components map[string]bool
}

func NewLoggingInfoStream(components ...string) *LoggingInfoStream {
	var enabled map[string]bool
	if len(components) > 0 {
		enabled = make(map[string]bool)
		for _, c := range components {
			enabled[c] = true
		}
	}
	return &LoggingInfoStream{
		logger:     logging.MustGetLogger("infostream"),
		components: enabled,
	}
}

func (is *LoggingInfoStream) Message(component, message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	is.logger.Debugf("%v: %v", component, message)
}

func (is *LoggingInfoStream) IsEnabled(component string) bool {
	return is.components == nil || is.components[component]
}

func (is *LoggingInfoStream) Clone() InfoStream {
	return &LoggingInfoStream{is.logger, is.components}
}

func (is *LoggingInfoStream) Close() error { return nil }
