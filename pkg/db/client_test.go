package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"gorm.io/gorm"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.DBConfig{DSN: "file::memory:?cache=shared&_pragma=foreign_keys(1)"}
	flags := config.FeatureFlagsConfig{UseSQLite: true}

	client, err := New(context.Background(), cfg, flags, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(&models.User{}))
	return client
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestWithTxCommits(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.User{
			Email:        "tx-commit@example.com",
			PasswordHash: "hash",
			FirstName:    "Tx",
			LastName:     "Commit",
			DisplayName:  "Tx Commit",
			IsActive:     true,
		}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).
		Where("email = ?", "tx-commit@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{
			Email:        "tx-rollback@example.com",
			PasswordHash: "hash",
			FirstName:    "Tx",
			LastName:     "Rollback",
			DisplayName:  "Tx Rollback",
			IsActive:     true,
		}).Error; err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).
		Where("email = ?", "tx-rollback@example.com").Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestIsUniqueViolation(t *testing.T) {
	client := newTestClient(t)

	user := models.User{
		Email:        "dupe@example.com",
		PasswordHash: "hash",
		FirstName:    "Du",
		LastName:     "Pe",
		DisplayName:  "Du Pe",
		IsActive:     true,
	}
	require.NoError(t, client.DB().Create(&user).Error)

	dupe := models.User{
		Email:        "dupe@example.com",
		PasswordHash: "hash",
		FirstName:    "Du",
		LastName:     "Pe",
		DisplayName:  "Du Pe",
		IsActive:     true,
	}
	err := client.DB().Create(&dupe).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(errors.New("some other failure"), ""))
}
