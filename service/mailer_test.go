package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordResetMessage("noreply@example.com", "ada@example.com", "", "https://app/reset?token=abc")
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Reset your BookReflect password"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hi reader")
	assert.Contains(t, buf.String(), "https://app/reset?token=abc")
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := LogMailer{Log: zap.New(core)}

	require.NoError(t, m.SendPasswordReset(context.Background(), "ada@example.com", "Ada", "https://app/reset?token=abc"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "https://app/reset?token=abc", logs.All()[0].ContextMap()["link"])
}

func TestMediaURL(t *testing.T) {
	url := MediaURL("avatars/u1/x.png")
	assert.Equal(t, "/api/media/avatars/u1/x.png", url)

	key, ok := MediaKey(url)
	assert.True(t, ok)
	assert.Equal(t, "avatars/u1/x.png", key)

	_, ok = MediaKey("https://covers.openlibrary.org/b/isbn/1-L.jpg")
	assert.False(t, ok)
	_, ok = MediaKey("/api/media/")
	assert.False(t, ok)
}
