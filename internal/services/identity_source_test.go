package services

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeIdentitySource_EmptyPathIsNil(t *testing.T) {
	assert.Nil(t, NewPipeIdentitySource(""))
}

func TestNewPipeIdentitySource_UnopenablePathIsNil(t *testing.T) {
	assert.Nil(t, NewPipeIdentitySource("/nonexistent/identity.pipe"))
}

func TestPipeIdentitySource_DecodesEnvelopesAndDropsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.jsonl")
	lines := `{"type":"studio.identity","origin":"https://studio.makerhost.com","user_id":"seller-1"}
not json at all

{"type":"studio.identity","origin":"https://studio.makerhost.com","user_id":"seller-2"}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	source := NewPipeIdentitySource(path)
	require.NotNil(t, source)

	var received []IdentityEnvelope
	timeout := time.After(time.Second)
	for {
		select {
		case env, ok := <-source.Envelopes():
			if !ok {
				assert.Len(t, received, 2, "malformed and blank lines are dropped")
				assert.Equal(t, "seller-1", received[0].UserID)
				assert.Equal(t, "seller-2", received[1].UserID)
				return
			}
			received = append(received, env)
		case <-timeout:
			t.Fatal("pipe source did not finish delivering envelopes")
		}
	}
}

func TestPipeIdentitySource_SilentHostDoesNotBlockStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.pipe")
	require.NoError(t, syscall.Mkfifo(path, 0o600))

	// Nothing ever opens the write end. The constructor must still return
	// promptly and the envelope channel must drain to closed.
	opened := make(chan IdentitySource, 1)
	go func() { opened <- NewPipeIdentitySource(path) }()

	var source IdentitySource
	select {
	case source = <-opened:
	case <-time.After(time.Second):
		t.Fatal("opening an identity pipe with no host connected must not block")
	}
	require.NotNil(t, source)

	select {
	case _, ok := <-source.Envelopes():
		assert.False(t, ok, "a silent host pipe drains to closed")
	case <-time.After(time.Second):
		t.Fatal("envelope channel must close when no host is connected")
	}
}

func TestChannelIdentitySource(t *testing.T) {
	source := NewChannelIdentitySource()

	source.Deliver(IdentityEnvelope{Type: IdentityMessageType, Origin: "https://studio.makerhost.com", UserID: "seller-1"})
	source.Close()

	env, ok := <-source.Envelopes()
	assert.True(t, ok)
	assert.Equal(t, "seller-1", env.UserID)

	_, ok = <-source.Envelopes()
	assert.False(t, ok)
}
