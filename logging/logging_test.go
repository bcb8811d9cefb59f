package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosass/sass/logging"
	"github.com/gosass/sass/span"
)

func TestWriterWarnWrites(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf)
	l.Warn("something's off", "", nil)
	assert.Contains(t, buf.String(), "something's off")
}

func TestWriterWarnDeduplicatesByDeprecationAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf)
	l.Warn("old syntax", "slash-div", nil)
	l.Warn("old syntax", "slash-div", nil)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("old syntax")))
}

func TestWriterQuietSuppressesWarn(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf)
	l.Quiet = true
	l.Warn("should not appear", "", nil)
	assert.Empty(t, buf.String())
}

func TestWriterDebugRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf)
	l.Debug("trace info", span.Span{})
	assert.Empty(t, buf.String())

	l.Verbose = true
	l.Debug("trace info", span.Span{})
	assert.Contains(t, buf.String(), "trace info")
}

func TestDiscardDropsEverything(t *testing.T) {
	assert.NotPanics(t, func() {
		logging.Discard.Warn("x", "y", nil)
		logging.Discard.Debug("x", span.Span{})
	})
}
