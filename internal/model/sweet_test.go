package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSweetPatch_Apply(t *testing.T) {
	t.Parallel()

	description := "Cherry flavour"
	original := Sweet{
		ID:          "id-1",
		Name:        "Lollipop",
		Category:    "Candy",
		Price:       decimal.RequireFromString("0.99"),
		Quantity:    10,
		Description: &description,
	}

	t.Run("only supplied fields change", func(t *testing.T) {
		price := decimal.RequireFromString("1.25")
		patched := SweetPatch{Price: &price}.Apply(original)

		require.True(t, patched.Price.Equal(price))
		require.Equal(t, "Lollipop", patched.Name)
		require.Equal(t, "Candy", patched.Category)
		require.Equal(t, int64(10), patched.Quantity)
		require.Equal(t, "Cherry flavour", *patched.Description)
		require.True(t, original.Price.Equal(decimal.RequireFromString("0.99")))
	})

	t.Run("empty patch", func(t *testing.T) {
		require.True(t, SweetPatch{}.IsEmpty())
		require.Equal(t, original, SweetPatch{}.Apply(original))

		quantity := int64(0)
		require.False(t, SweetPatch{Quantity: &quantity}.IsEmpty())
		require.False(t, SweetPatch{ImageURL: ClearString()}.IsEmpty())
	})

	t.Run("null clears an optional field", func(t *testing.T) {
		patched := SweetPatch{Description: ClearString()}.Apply(original)
		require.Nil(t, patched.Description)
		require.Equal(t, "Cherry flavour", *original.Description)
	})

	t.Run("set replaces an optional field", func(t *testing.T) {
		patched := SweetPatch{ImageURL: SetString("/img/lolly.png")}.Apply(original)
		require.NotNil(t, patched.ImageURL)
		require.Equal(t, "/img/lolly.png", *patched.ImageURL)
		require.Equal(t, "Cherry flavour", *patched.Description)
	})
}

func TestUpdateSweetRequest_TellsNullFromAbsent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		description OptionalString
		imageURL    OptionalString
	}{
		{name: "absent", body: `{}`, description: OptionalString{}, imageURL: OptionalString{}},
		{name: "explicit null", body: `{"description":null}`, description: ClearString(), imageURL: OptionalString{}},
		{name: "value", body: `{"description":"tasty","image_url":null}`, description: SetString("tasty"), imageURL: ClearString()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateSweetRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			require.Equal(t, tc.description, req.Description)
			require.Equal(t, tc.imageURL, req.ImageURL)
		})
	}

	var req UpdateSweetRequest
	require.Error(t, json.Unmarshal([]byte(`{"description":42}`), &req))
}

func TestSweetFilter_Matches(t *testing.T) {
	t.Parallel()

	lolly := Sweet{Name: "Lollipop", Category: "Candy", Price: decimal.RequireFromString("0.99")}
	truffle := Sweet{Name: "Dark Truffle", Category: "Chocolate", Price: decimal.RequireFromString("5.99")}

	minPrice := decimal.RequireFromString("2.0")
	maxPrice := decimal.RequireFromString("10.0")
	exact := decimal.RequireFromString("5.99")

	tests := []struct {
		name   string
		filter SweetFilter
		sweet  Sweet
		want   bool
	}{
		{name: "empty filter matches all", filter: SweetFilter{}, sweet: lolly, want: true},
		{name: "name substring ignores case", filter: SweetFilter{Name: "lolli"}, sweet: lolly, want: true},
		{name: "name mismatch", filter: SweetFilter{Name: "truffle"}, sweet: lolly, want: false},
		{name: "category substring", filter: SweetFilter{Category: "choc"}, sweet: truffle, want: true},
		{name: "below min price", filter: SweetFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, sweet: lolly, want: false},
		{name: "within price range", filter: SweetFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, sweet: truffle, want: true},
		{name: "bounds are inclusive", filter: SweetFilter{MinPrice: &exact, MaxPrice: &exact}, sweet: truffle, want: true},
		{name: "all filters combine", filter: SweetFilter{Name: "dark", Category: "candy"}, sweet: truffle, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.filter.Matches(tc.sweet))
		})
	}
}

func TestSweet_PriceIsAJSONNumber(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Sweet{Price: decimal.RequireFromString("2.99")})
	require.NoError(t, err)
	require.Contains(t, string(data), `"price":2.99`)
	require.Contains(t, string(data), `"description":null`)
	require.Equal(t, 1, strings.Count(string(data), `"price"`))

	var decoded Sweet
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, decoded.Price.Equal(decimal.RequireFromString("2.99")))
}

func TestSweet_MarshalLeavesDecimalDefaultsAlone(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(map[string]decimal.Decimal{"amount": decimal.RequireFromString("2.99")})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":"2.99"}`, string(data))
}

func TestAccount_ViewHasNoPasswordHash(t *testing.T) {
	t.Parallel()

	account := Account{ID: "id-1", Email: "a@x.com", PasswordHash: "$2a$12$secret", Name: "A", Role: RoleUser}

	data, err := json.Marshal(account.View())
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret")
	require.NotContains(t, string(data), "password")

	data, err = json.Marshal(account)
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret")
}
