package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		"title":          "Rolex Watch",
		"brand":          "Rolex",
		"category":       "Watches",
		"condition":      "Mint",
		"targetAudience": "Man",
		"description":    "Submariner from 1998, full set.",
		"price":          "4500",
	}
}

func TestListingSchema_ValidPayload(t *testing.T) {
	s := NewListingSchema()

	res := s.Validate(validInput())
	require.True(t, res.OK(), "errors: %v", res.Errors())

	l := res.Value()
	assert.Equal(t, "Rolex Watch", l.Title)
	assert.Equal(t, "Rolex", l.Brand)
	assert.Equal(t, 4500.0, l.Price)
	assert.Nil(t, l.BuyNowPrice)
	assert.Empty(t, l.Photos)
}

func TestListingSchema_OffendingFieldsOnly(t *testing.T) {
	s := NewListingSchema()

	tests := []struct {
		name    string
		mutate  func(in Input)
		field   string
		message string
	}{
		{"缺少标题", func(in Input) { delete(in, "title") }, "title", "A title is required"},
		{"空标题", func(in Input) { in["title"] = "" }, "title", "A title is required"},
		{"标题过长", func(in Input) { in["title"] = strings.Repeat("a", 101) }, "title", "Title must be at most 100 characters."},
		{"缺少品牌", func(in Input) { delete(in, "brand") }, "brand", "Brand is required."},
		{"空品类", func(in Input) { in["category"] = "" }, "category", "Category is required."},
		{"未知成色", func(in Input) { in["condition"] = "Broken" }, "condition", "Invalid condition. Expected one of: Mint, Like new, Good, Fair."},
		{"缺少人群", func(in Input) { in["targetAudience"] = nil }, "targetAudience", "Target audience is required."},
		{"描述太短", func(in Input) { in["description"] = "abc" }, "description", "Description must be at least 5 characters."},
		{"缺少价格", func(in Input) { delete(in, "price") }, "price", "Price is required."},
		{"负价格", func(in Input) { in["price"] = -3 }, "price", "Price must be a positive number."},
		{"价格小于1", func(in Input) { in["price"] = 0.5 }, "price", "Price is required."},
		{"价格非数字", func(in Input) { in["price"] = "abc" }, "price", "Expected number, received abc."},
		{"一口价为0", func(in Input) { in["buyNowPrice"] = 0 }, "buyNowPrice", "Buy Now Price must be a positive number."},
		{"价格超出上限", func(in Input) { in["price"] = 1e10 }, "price", "Price must be at most 9999999999.99."},
		{"价格三位小数", func(in Input) { in["price"] = "1234.567" }, "price", "Price must have at most 2 decimal places."},
		{"一口价超出上限", func(in Input) { in["buyNowPrice"] = "10000000000" }, "buyNowPrice", "Buy Now Price must be at most 9999999999.99."},
		{"一口价三位小数", func(in Input) { in["buyNowPrice"] = 0.125 }, "buyNowPrice", "Buy Now Price must have at most 2 decimal places."},
		{"颜色过长", func(in Input) { in["color"] = strings.Repeat("c", 51) }, "color", "Color must be at most 50 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)

			res := s.Validate(in)
			require.False(t, res.OK())
			assert.Equal(t, FieldErrors{tt.field: tt.message}, res.Errors())
		})
	}
}

func TestListingSchema_NumericCoercion(t *testing.T) {
	s := NewListingSchema()

	in := validInput()
	in["price"] = " 450.50 "
	in["buyNowPrice"] = "600"

	res := s.Validate(in)
	require.True(t, res.OK(), "errors: %v", res.Errors())
	assert.Equal(t, 450.5, res.Value().Price)
	require.NotNil(t, res.Value().BuyNowPrice)
	assert.Equal(t, 600.0, *res.Value().BuyNowPrice)
}

func TestListingSchema_PriceBounds(t *testing.T) {
	s := NewListingSchema()

	in := validInput()
	in["price"] = "9999999999.99"
	in["buyNowPrice"] = 12.34

	res := s.Validate(in)
	require.True(t, res.OK(), "errors: %v", res.Errors())
	assert.Equal(t, 9999999999.99, res.Value().Price)
	assert.Equal(t, 12.34, *res.Value().BuyNowPrice)
}

func TestListingSchema_OptionalAbsentSentinel(t *testing.T) {
	s := NewListingSchema()

	in := validInput()
	in["buyNowPrice"] = ""
	in["material"] = ""
	in["collection"] = nil
	in["photos"] = map[string]any{"front": nil, "back": map[string]any{}}

	res := s.Validate(in)
	require.True(t, res.OK(), "errors: %v", res.Errors())
	assert.Nil(t, res.Value().BuyNowPrice)
	assert.Empty(t, res.Value().Material)
	assert.Empty(t, res.Value().Photos)
}

func TestListingSchema_Photos(t *testing.T) {
	s := NewListingSchema()

	in := validInput()
	in["photos"] = map[string]any{
		"front": map[string]any{"name": "a.png", "size": 1024, "content_type": "image/png"},
		"back":  &File{Name: "b.gif", Size: 1024, ContentType: "image/gif"},
		"side":  File{Name: "c.jpg", Size: MaxFileSize + 1, ContentType: "image/jpeg"},
	}

	res := s.Validate(in)
	require.False(t, res.OK())
	assert.Equal(t, FieldErrors{
		"photos.back": ".jpg, .jpeg, .png and .webp files are accepted.",
		"photos.side": "Max file size is 5MB.",
	}, res.Errors())

	delete(in["photos"].(map[string]any), "back")
	delete(in["photos"].(map[string]any), "side")
	res = s.Validate(in)
	require.True(t, res.OK(), "errors: %v", res.Errors())
	require.Contains(t, res.Value().Photos, "front")
	assert.Equal(t, int64(1024), res.Value().Photos["front"].Size)
}

func TestListingSchema_ValidateFields(t *testing.T) {
	s := NewListingSchema()

	// 只校验第一步字段，价格缺失不影响
	in := validInput()
	delete(in, "price")
	res := s.ValidateFields(in, "title", "brand", "category", "condition", "targetAudience", "description")
	assert.True(t, res.OK(), "errors: %v", res.Errors())

	res = s.ValidateFields(Input{}, "title", "price")
	require.False(t, res.OK())
	assert.Equal(t, []string{"price", "title"}, res.Errors().Paths())

	res = s.ValidateFields(Input{}, "nope")
	require.False(t, res.OK())
	assert.Equal(t, "Unknown field.", res.Errors()["nope"])

	assert.True(t, s.ValidateFields(Input{}).OK())
}

func TestListingSchema_RequiredFields(t *testing.T) {
	s := NewListingSchema()

	assert.ElementsMatch(t,
		[]string{"title", "category", "brand", "condition", "targetAudience", "description", "price"},
		s.RequiredFields())
	assert.Contains(t, s.Fields(), "photos.interior")
}

func TestListing_InputRoundTrip(t *testing.T) {
	s := NewListingSchema()

	first := s.Validate(validInput())
	require.True(t, first.OK())

	second := s.Validate(first.Value().Input())
	require.True(t, second.OK(), "errors: %v", second.Errors())
	assert.Equal(t, first.Value(), second.Value())
}
