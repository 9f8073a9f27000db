package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"trendies_market_v1/internal/model"
)

// ==================== 字段路径 ====================

const (
	FieldTitle          = "title"
	FieldCategory       = "category"
	FieldSizeDimensions = "sizeDimensions"
	FieldBrand          = "brand"
	FieldCondition      = "condition"
	FieldCollection     = "collection"
	FieldTargetAudience = "targetAudience"
	FieldMaterial       = "material"
	FieldColor          = "color"
	FieldDescription    = "description"
	FieldPrice          = "price"
	FieldBuyNowPrice    = "buyNowPrice"
)

// PhotoSlots 六个固定图片位
var PhotoSlots = []string{"front", "back", "side", "logo", "material", "interior"}

// PhotoField 图片位对应的字段路径
func PhotoField(slot string) string {
	return "photos." + slot
}

// IsPhotoSlot 是否为合法图片位
func IsPhotoSlot(slot string) bool {
	for _, s := range PhotoSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ==================== 枚举 ====================

var (
	Brands = []string{
		"Louis Vuitton", "Hermes", "Gucci", "Prada", "Chanel",
		"Dior", "Yves Saint Laurent", "Bulgari", "Rolex", "Cartier",
	}
	Categories = []string{"Jewelry", "Watches", "Bags", "Shoes"}
	Conditions = []string{"Mint", "Like new", "Good", "Fair"}
	Audiences  = []string{"Man", "Women", "Children"}
)

// ==================== 类型化结果 ====================

// Listing 通过完整校验后的商品数据
type Listing struct {
	Title          string           `json:"title"`
	Category       string           `json:"category"`
	SizeDimensions string           `json:"sizeDimensions,omitempty"`
	Brand          string           `json:"brand"`
	Condition      string           `json:"condition"`
	Collection     string           `json:"collection,omitempty"`
	TargetAudience string           `json:"targetAudience"`
	Material       string           `json:"material,omitempty"`
	Color          string           `json:"color,omitempty"`
	Description    string           `json:"description"`
	Photos         map[string]*File `json:"photos,omitempty"`
	Price          float64          `json:"price"`
	BuyNowPrice    *float64         `json:"buyNowPrice,omitempty"`
}

// Input 转回候选载荷，缺省字段不写入
func (l Listing) Input() Input {
	in := Input{
		FieldTitle:          l.Title,
		FieldCategory:       l.Category,
		FieldBrand:          l.Brand,
		FieldCondition:      l.Condition,
		FieldTargetAudience: l.TargetAudience,
		FieldDescription:    l.Description,
		FieldPrice:          l.Price,
	}
	optional := map[string]string{
		FieldSizeDimensions: l.SizeDimensions,
		FieldCollection:     l.Collection,
		FieldMaterial:       l.Material,
		FieldColor:          l.Color,
	}
	for k, v := range optional {
		if v != "" {
			in[k] = v
		}
	}
	if l.BuyNowPrice != nil {
		in[FieldBuyNowPrice] = *l.BuyNowPrice
	}
	for slot, f := range l.Photos {
		if f != nil {
			in[PhotoField(slot)] = f
		}
	}
	return in
}

func listingFromValues(values map[string]any) Listing {
	str := func(k string) string {
		s, _ := values[k].(string)
		return s
	}
	l := Listing{
		Title:          str(FieldTitle),
		Category:       str(FieldCategory),
		SizeDimensions: str(FieldSizeDimensions),
		Brand:          str(FieldBrand),
		Condition:      str(FieldCondition),
		Collection:     str(FieldCollection),
		TargetAudience: str(FieldTargetAudience),
		Material:       str(FieldMaterial),
		Color:          str(FieldColor),
		Description:    str(FieldDescription),
	}
	if p, ok := values[FieldPrice].(float64); ok {
		l.Price = p
	}
	if p, ok := values[FieldBuyNowPrice].(float64); ok {
		l.BuyNowPrice = &p
	}
	for _, slot := range PhotoSlots {
		if f, ok := values[PhotoField(slot)].(*File); ok && f != nil {
			if l.Photos == nil {
				l.Photos = make(map[string]*File)
			}
			l.Photos[slot] = f
		}
	}
	return l
}

// ==================== 商品 Schema ====================

// ListingSchema 商品提交校验，向导逐步校验与服务端完整校验共用
type ListingSchema struct {
	*Schema
}

// NewListingSchema 构建商品 Schema
func NewListingSchema() *ListingSchema {
	v := validator.New()
	enums := map[string][]string{
		"listing_brand":     Brands,
		"listing_category":  Categories,
		"listing_condition": Conditions,
		"listing_audience":  Audiences,
	}
	for tag, set := range enums {
		// 标签名固定且非空，注册不会失败
		_ = v.RegisterValidation(tag, OneOf(set))
	}

	fields := []Field{
		{
			Path: FieldTitle, Kind: KindString, Required: true,
			RequiredMessage: "A title is required",
			Rules: []Rule{
				{Tag: "min=1", Message: "A title is required"},
				{Tag: "max=100", Message: "Title must be at most 100 characters."},
			},
		},
		enumField(FieldCategory, "listing_category", "Category", Categories),
		{
			Path: FieldSizeDimensions, Kind: KindString,
			Rules: []Rule{{Tag: "max=100", Message: "Size/dimensions must be at most 100 characters."}},
		},
		enumField(FieldBrand, "listing_brand", "Brand", Brands),
		enumField(FieldCondition, "listing_condition", "Condition", Conditions),
		{
			Path: FieldCollection, Kind: KindString,
			Rules: []Rule{{Tag: "max=100", Message: "Collection must be at most 100 characters."}},
		},
		enumField(FieldTargetAudience, "listing_audience", "Target audience", Audiences),
		{
			Path: FieldMaterial, Kind: KindString,
			Rules: []Rule{{Tag: "max=100", Message: "Material must be at most 100 characters."}},
		},
		{
			Path: FieldColor, Kind: KindString,
			Rules: []Rule{{Tag: "max=50", Message: "Color must be at most 50 characters."}},
		},
		{
			Path: FieldDescription, Kind: KindString, Required: true,
			RequiredMessage: "Description must be at least 5 characters.",
			Rules: []Rule{
				{Tag: "min=5", Message: "Description must be at least 5 characters."},
				{Tag: "max=1000", Message: "Description must be at most 1000 characters."},
			},
		},
	}
	for _, slot := range PhotoSlots {
		fields = append(fields, photoField(slot))
	}
	fields = append(fields,
		Field{
			Path: FieldPrice, Kind: KindNumber, Required: true,
			RequiredMessage: "Price is required.",
			Rules: []Rule{
				{Tag: "gt=0", Message: "Price must be a positive number."},
				{Tag: "gte=1", Message: "Price is required."},
				{Check: withinMaxPrice, Message: maxPriceMessage("Price")},
				{Check: atMostCents, Message: "Price must have at most 2 decimal places."},
			},
		},
		Field{
			Path: FieldBuyNowPrice, Kind: KindNumber,
			Rules: []Rule{
				{Tag: "gt=0", Message: "Buy Now Price must be a positive number."},
				{Check: withinMaxPrice, Message: maxPriceMessage("Buy Now Price")},
				{Check: atMostCents, Message: "Buy Now Price must have at most 2 decimal places."},
			},
		},
	)

	return &ListingSchema{Schema: New(v, fields...)}
}

// ==================== 金额 ====================

// 金额落库为 decimal(12,2)，超出范围或多余小数位都要在校验阶段拦下

func withinMaxPrice(v any) bool {
	return v.(float64) <= model.MaxPrice
}

// atMostCents 按最短十进制表示计算小数位
func atMostCents(v any) bool {
	s := strconv.FormatFloat(v.(float64), 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	return dot < 0 || len(s)-dot-1 <= 2
}

func maxPriceMessage(label string) string {
	return fmt.Sprintf("%s must be at most %s.", label, strconv.FormatFloat(model.MaxPrice, 'f', 2, 64))
}

func enumField(path, tag, label string, set []string) Field {
	return Field{
		Path:            path,
		Kind:            KindEnum,
		Required:        true,
		RequiredMessage: label + " is required.",
		Rules: []Rule{{
			Tag:     tag,
			Message: fmt.Sprintf("Invalid %s. Expected one of: %s.", strings.ToLower(label), strings.Join(set, ", ")),
		}},
	}
}

func photoField(slot string) Field {
	return Field{
		Path: PhotoField(slot),
		Kind: KindFile,
		Rules: []Rule{
			{Check: func(v any) bool { return v.(*File).Size > 0 }, Message: "File is empty."},
			{Check: func(v any) bool { return v.(*File).Size <= MaxFileSize }, Message: "Max file size is 5MB."},
			{Check: func(v any) bool { return isAcceptedImageType(v.(*File).ContentType) }, Message: ".jpg, .jpeg, .png and .webp files are accepted."},
		},
	}
}

// Validate 完整校验
func (s *ListingSchema) Validate(in Input) Result[Listing] {
	values, errs := s.Parse(in)
	if len(errs) > 0 {
		return Err[Listing](errs)
	}
	return Ok(listingFromValues(values))
}

// ValidateFields 仅校验指定字段（向导逐步校验）
func (s *ListingSchema) ValidateFields(in Input, fields ...string) Result[map[string]any] {
	if len(fields) == 0 {
		return Ok(map[string]any{})
	}
	values, errs := s.Parse(in, fields...)
	if len(errs) > 0 {
		return Err[map[string]any](errs)
	}
	return Ok(values)
}
