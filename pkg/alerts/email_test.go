package alerts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/telebridge/pkg/models"
)

func TestFormatMessage(t *testing.T) {
	config := &models.EmailConfig{
		Username:      "bob@acme.com",
		To:            "ops@acme.com,net@acme.com",
		Cc:            "mgr@acme.com",
		SubjectPrefix: "[CloudVision Telemetry]",
	}

	occurred := time.Unix(1700000000, 0)
	alert := &models.AlertRecord{
		Severity:    "CRITICAL",
		Title:       "High CPU",
		Description: "CPU usage above 90%",
		Host:        "leaf-switch-01",
		OccurredAt:  occurred,
	}

	message := string(formatMessage(config, "cvp.acme.com", alert))

	assert.Contains(t, message, "From: bob@acme.com\r\n")
	assert.Contains(t, message, "To: ops@acme.com,net@acme.com\r\n")
	assert.Contains(t, message, "Cc: mgr@acme.com\r\n")
	assert.Contains(t, message, "Subject: [CloudVision Telemetry] CRITICAL High CPU\r\n")
	assert.Contains(t, message, "CRITICAL event on leaf-switch-01 at "+occurred.Format(alertTimeFormat))
	assert.Contains(t, message, "Description: CPU usage above 90%")
	assert.Contains(t, message, "View Event at cvp.acme.com/telemetry/events")

	// Headers and body separated by a blank line.
	assert.True(t, strings.Contains(message, "\r\n\r\n"))
}

func TestFormatMessage_NoCcHeaderWhenUnset(t *testing.T) {
	config := &models.EmailConfig{
		Username:      "bob@acme.com",
		To:            "ops@acme.com",
		SubjectPrefix: "[CloudVision Telemetry]",
	}

	message := string(formatMessage(config, "cvp.acme.com", &models.AlertRecord{}))

	assert.NotContains(t, message, "Cc:")
}

func TestSplitAddresses(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, splitAddresses("a@x.com, b@x.com"))
	assert.Equal(t, []string{"a@x.com"}, splitAddresses("a@x.com,"))
	assert.Nil(t, splitAddresses(""))
}
