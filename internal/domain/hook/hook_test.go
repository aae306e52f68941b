package hook

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		DisplayName: "Core events",
		Active:      true,
		Events:      []Event{{EntityName: "loan", ActionName: "disburse"}, {EntityName: "CLIENT", ActionName: "*"}},
		PayloadURL:  "https://example.org/hooks",
		Secret:      "s3cret",
	}
}

func TestNewHook(t *testing.T) {
	h, err := NewHook(uuid.New(), validInput())
	require.NoError(t, err)
	assert.Equal(t, TemplateWeb, h.Name)
	assert.Equal(t, ContentTypeJSON, h.ContentType)
	assert.Equal(t, "application/json", h.ContentType.MIME())

	assert.True(t, h.Matches("LOAN", "DISBURSE"))
	assert.True(t, h.Matches("client", "activate"))
	assert.False(t, h.Matches("LOAN", "APPROVE"))

	h.Active = false
	assert.False(t, h.Matches("LOAN", "DISBURSE"))

	bad := []func(*Input){
		func(in *Input) { in.PayloadURL = "/relative" },
		func(in *Input) { in.PayloadURL = "ftp://example.org/x" },
		func(in *Input) { in.Events = nil },
		func(in *Input) { in.ContentType = "xml" },
		func(in *Input) { in.DisplayName = " " },
	}
	for i, mutate := range bad {
		in := validInput()
		mutate(&in)
		_, err := NewHook(uuid.New(), in)
		assert.Error(t, err, "case %d", i)
	}
}

func TestSign(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"sha256=f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		Sign("key", []byte("The quick brown fox jumps over the lazy dog")))

	h := &Hook{}
	assert.Empty(t, h.Sign([]byte("x")))
}

func TestDeliveryBackoff(t *testing.T) {
	h, err := NewHook(uuid.New(), validInput())
	require.NoError(t, err)
	d := NewDelivery(h, "LOAN", "DISBURSE", "/loans/1", []byte(`{}`), 3)
	now := time.Now()
	assert.True(t, d.IsDue(now))

	d.MarkFailed("connection refused", 0, now)
	assert.Equal(t, DeliveryFailed, d.Status)
	assert.Equal(t, now.Add(DefaultBaseBackoff), d.NextAttemptAt)
	assert.False(t, d.IsDue(now))

	d.MarkFailed("502", 502, now)
	assert.Equal(t, now.Add(2*DefaultBaseBackoff), d.NextAttemptAt)

	d.MarkFailed("502", 502, now)
	assert.Equal(t, DeliveryDead, d.Status)
	assert.False(t, d.IsDue(now.Add(time.Hour)))

	ok := NewDelivery(h, "LOAN", "DISBURSE", "/loans/1", nil, 0)
	assert.Equal(t, DefaultMaxAttempts, ok.MaxAttempts)
	ok.MarkSent(200, now)
	assert.Equal(t, DeliverySent, ok.Status)
	assert.NotNil(t, ok.DeliveredAt)
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{1, DefaultBaseBackoff},
		{2, time.Minute},
		{7, 32 * time.Minute},
		{8, time.Hour},
		{30, time.Hour},
		{63, time.Hour},
		{1000, time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryBackoff(tt.attempts), "after %d attempts", tt.attempts)
	}
}

func TestDeliveryBackoff_ManyAttemptsStayInTheFuture(t *testing.T) {
	h, err := NewHook(uuid.New(), validInput())
	require.NoError(t, err)
	d := NewDelivery(h, "LOAN", "REPAYMENT", "/loans/1", []byte(`{}`), 100)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	for i := 1; i < 100; i++ {
		d.MarkFailed("timeout", 0, now)
		require.Equal(t, DeliveryFailed, d.Status)
		require.False(t, d.IsDue(now), "attempt %d is due immediately", i)
		require.False(t, d.NextAttemptAt.After(now.Add(time.Hour)), "attempt %d waits past the cap", i)
	}
	d.MarkFailed("timeout", 0, now)
	assert.Equal(t, DeliveryDead, d.Status)
}
