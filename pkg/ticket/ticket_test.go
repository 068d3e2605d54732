package ticket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	visitID := uuid.New()

	ticket, err := codec.Issue(visitID, "Alice", "A101")
	require.NoError(t, err)
	require.NotEmpty(t, ticket)

	claims, err := codec.Verify(ticket)
	require.NoError(t, err)
	assert.Equal(t, visitID, claims.VisitID)
	assert.Equal(t, "Alice", claims.GuestName)
	assert.Equal(t, "A101", claims.FlatNumber)
}

// expiredCodec issues tickets that are already past their expiry; NewCodec
// refuses non-positive TTLs so the struct is built directly
func expiredCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), ttl: -time.Minute}
}

func TestVerify_Expired(t *testing.T) {
	codec := expiredCodec("test-secret")

	ticket, err := codec.Issue(uuid.New(), "Bob", "B202")
	require.NoError(t, err)

	_, err = codec.Verify(ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewCodec("secret-one", time.Hour)
	verifier := NewCodec("secret-two", time.Hour)

	ticket, err := issuer.Issue(uuid.New(), "Carol", "A102")
	require.NoError(t, err)

	_, err = verifier.Verify(ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestVerify_Garbage(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	for _, ticket := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(ticket)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	}
}

func TestVerify_FailuresIndistinguishable(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	expired := expiredCodec("test-secret")
	foreign := NewCodec("other-secret", time.Hour)

	expiredTicket, err := expired.Issue(uuid.New(), "Dan", "B201")
	require.NoError(t, err)
	foreignTicket, err := foreign.Issue(uuid.New(), "Eve", "B203")
	require.NoError(t, err)

	_, errExpired := codec.Verify(expiredTicket)
	_, errForged := codec.Verify(foreignTicket)
	_, errMalformed := codec.Verify("garbage")

	assert.Equal(t, errExpired, errForged)
	assert.Equal(t, errForged, errMalformed)
}

func TestNewCodec_DefaultTTL(t *testing.T) {
	codec := NewCodec("test-secret", 0)

	ticket, err := codec.Issue(uuid.New(), "Frank", "A103")
	require.NoError(t, err)

	claims, err := codec.Verify(ticket)
	require.NoError(t, err)
	ttl := claims.ExpiresAt.Sub(claims.RegisteredClaims.IssuedAt.Time)
	assert.Equal(t, DefaultTTL, ttl)
}
