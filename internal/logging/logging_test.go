package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer base.SetLevel(logrus.WarnLevel)

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, Logger().GetLevel())
	require.NoError(t, SetLevel(" ERROR "))
	assert.Equal(t, logrus.ErrorLevel, Logger().GetLevel())
	assert.Error(t, SetLevel("chatty"))
}

func TestNamedCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	out := base.Out
	base.SetOutput(&buf)
	defer base.SetOutput(out)

	Named("expand").Warn("fallback")
	assert.Contains(t, buf.String(), "component=expand")
	assert.Contains(t, buf.String(), "fallback")
}
