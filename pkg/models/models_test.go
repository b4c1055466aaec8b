package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ID
	}{
		{name: "string_id", input: `"a1b2-c3"`, expected: "a1b2-c3"},
		{name: "numeric_id", input: `42`, expected: "42"},
		{name: "large_numeric_id", input: `9007199254740993`, expected: "9007199254740993"},
		{name: "null_id", input: `null`, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.input), &id))
			assert.Equal(t, tt.expected, id)
		})
	}

	t.Run("rejects_objects", func(t *testing.T) {
		var id ID
		assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
	})
}

func TestID_MarshalJSON(t *testing.T) {
	numeric, err := json.Marshal(ID("17"))
	require.NoError(t, err)
	assert.Equal(t, `17`, string(numeric))

	text, err := json.Marshal(ID("user-17"))
	require.NoError(t, err)
	assert.Equal(t, `"user-17"`, string(text))
}

func TestUser_DecodesBackendShape(t *testing.T) {
	payload := `{"userId":7,"email":"a@b.io","username":"alice","firstName":"Alice","trustScore":12}`

	var user User
	require.NoError(t, json.Unmarshal([]byte(payload), &user))

	assert.Equal(t, ID("7"), user.UserID)
	assert.Equal(t, "Alice", user.DisplayName())
	assert.Equal(t, 12, user.TrustScore)
	assert.Equal(t, "alice", User{Username: "alice"}.DisplayName())
}

func TestRarity_Valid(t *testing.T) {
	for _, r := range Rarities {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Rarity("MYTHIC").Valid())
	assert.False(t, Rarity("common").Valid())
}

func TestTransactionStats_SuccessRate(t *testing.T) {
	stats := TransactionStats{
		TotalTransactions:     373,
		CompletedTransactions: 358,
		RejectedTransactions:  10,
		CancelledTransactions: 5,
	}

	assert.True(t, decimal.RequireFromString("96").Equal(stats.SuccessRate()), stats.SuccessRate().String())
	assert.Equal(t, int64(15), stats.Failed())
	assert.True(t, TransactionStats{}.SuccessRate().IsZero())
}

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.True(t, Session{AccessToken: "tok"}.Authenticated())
}
