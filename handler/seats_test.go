package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Token GUEST_ luôn do server sinh ra từ session id của client; client không
// thể tự xưng là USER_ hay STAFF_ để đụng vào hold của người khác.
func TestGuestTokenForcesNamespace(t *testing.T) {
	assert.Equal(t, "GUEST_abc123", guestToken("abc123"))

	// Session id giả dạng token đã xác thực vẫn bị ép vào namespace GUEST_
	assert.Equal(t, "GUEST_USER_7", guestToken("USER_7"))
	assert.Equal(t, "GUEST_STAFF_3", guestToken("STAFF_3"))

	// Token đã đúng namespace thì giữ nguyên để khách release được ghế của mình
	assert.Equal(t, "GUEST_abc123", guestToken("GUEST_abc123"))
}

func TestGuestTokenEmptySession(t *testing.T) {
	token := guestToken("")
	assert.True(t, strings.HasPrefix(token, "GUEST_"))
	assert.Greater(t, len(token), len("GUEST_"))

	// Mỗi lần sinh một token khác nhau, không trùng giữa hai khách vô danh
	assert.NotEqual(t, token, guestToken(""))
}
