package authtest

import (
	"testing"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/pkg/config"
	"pasarlink/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// IssueToken signs a bearer token the way the identity service would.
func IssueToken(t *testing.T, cfg config.Config, userID uuid.UUID, role actor.Role) string {
	t.Helper()

	token, err := jwt.NewService(cfg.JWT.Secret).GenerateToken(userID, role, time.Hour)
	require.NoError(t, err, "failed to issue test token")
	return token
}
