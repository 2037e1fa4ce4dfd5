package mongostore

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"plantcare-community/internal/core/database"
	"plantcare-community/internal/repo/repotest"
)

// 需要真实 MongoDB：MONGO_URI=mongodb://localhost:27017 go test ./internal/repo/mongostore
func TestMongoStoreContract(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	repotest.Run(t, func(t *testing.T) repotest.Repos {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		name := "plantcare_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		client, db, err := database.NewMongo(ctx, database.MongoOpts{URI: uri, Database: name})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = db.Drop(context.Background())
			_ = client.Disconnect(context.Background())
		})

		s := New(db)
		require.NoError(t, s.EnsureIndexes(ctx))
		return repotest.Repos{Users: s.Users(), Posts: s.Posts(), Communities: s.Communities()}
	})
}

func TestContainsRegexQuotesMeta(t *testing.T) {
	re := containsRegex("a.b*(c)")
	require.Equal(t, `a\.b\*\(c\)`, re.Pattern)
	require.Equal(t, "i", re.Options)
}
