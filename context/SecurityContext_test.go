package context

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaj13/go-guardian/v2/auth"
	"github.com/stretchr/testify/assert"
)

func TestCreate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, anonymousUserId, Create(r).GetUserId())

	r = auth.RequestWithUser(auth.NewDefaultUser("system", "system", nil, nil), r)
	assert.Equal(t, "system", Create(r).GetUserId())
}
