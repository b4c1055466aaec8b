package admin

import (
	"context"
	"net/http"
	"testing"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllUsers(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	h.backend.on(http.MethodGet, "/api/v2/users", http.StatusOK,
		`{"data":{"data":[{"userId":1,"username":"ana"},{"userId":"u-2","username":"bo"}],"totalPages":4,"totalItems":70}}`)

	page, err := h.api.GetAllUsers(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, models.ID("u-2"), page.Items[1].UserID)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, 70, page.TotalItems)

	sent := h.backend.last(t)
	assert.Equal(t, "2", sent.Query["page"])
	assert.Equal(t, "20", sent.Query["size"])
}

func TestGetAllUsers_ZeroBasedBackend(t *testing.T) {
	endpoints := DefaultEndpoints()
	endpoints.PageBase = 0
	h := newHarness(t, endpoints)
	h.backend.on(http.MethodGet, "/api/v2/users", http.StatusOK, `{"data":[]}`)

	page, err := h.api.GetAllUsers(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "0", h.backend.last(t).Query["page"])
}

func TestDeleteUser(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	h.backend.on(http.MethodDelete, "/api/v2/users/12", http.StatusNoContent, ``)

	require.NoError(t, h.api.DeleteUser(context.Background(), "12"))
	assert.Equal(t, http.MethodDelete, h.backend.last(t).Method)
}

func TestAddPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("blank_reason_uses_default", func(t *testing.T) {
		h := newHarness(t, DefaultEndpoints())
		h.backend.on(http.MethodPost, "/api/v2/gamification/points/add", http.StatusOK, `{}`)

		require.NoError(t, h.api.AddPoints(ctx, models.PointGrant{UserID: "7", Points: 50, Reason: "   "}))

		sent := h.backend.last(t).Body
		assert.Equal(t, DefaultPointsReason, sent["reason"])
		assert.Equal(t, "Platform activity", sent["reason"])
		assert.Equal(t, models.PointSourceAdmin, sent["sourceType"])
		assert.Equal(t, float64(7), sent["userId"])
		assert.Equal(t, float64(50), sent["points"])
	})

	t.Run("keeps_reason_and_negative_points", func(t *testing.T) {
		h := newHarness(t, DefaultEndpoints())
		require.NoError(t, h.api.AddPoints(ctx, models.PointGrant{UserID: "7", Points: -5, Reason: " Abuse "}))

		sent := h.backend.last(t).Body
		assert.Equal(t, "Abuse", sent["reason"])
		assert.Equal(t, float64(-5), sent["points"])
	})

	t.Run("zero_points_rejected", func(t *testing.T) {
		h := newHarness(t, DefaultEndpoints())
		err := h.api.AddPoints(ctx, models.PointGrant{UserID: "7"})
		assert.True(t, errors.Is(err, errors.ErrCodeValidation))
		assert.Empty(t, h.backend.requests())
	})
}

func TestSendNotification(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	h.backend.on(http.MethodPost, "/api/v2/notifications/send", http.StatusOK, `{}`)

	require.NoError(t, h.api.SendNotification(context.Background(), "7", "Points", "You received 5 points"))

	sent := h.backend.last(t).Body
	assert.Equal(t, "Points", sent["title"])
	assert.Equal(t, "You received 5 points", sent["body"])
	assert.Equal(t, models.NotificationTypeSystem, sent["type"])
}

func TestSendNotification_NoRetry(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	h.backend.on(http.MethodPost, "/api/v2/notifications/send", http.StatusBadGateway, `{}`)

	err := h.api.SendNotification(context.Background(), "7", "t", "b")
	require.Error(t, err)
	assert.Len(t, h.backend.requests(), 1)
}
