package model

// MaxPrice decimal(12,2) 能存下的最大金额
const MaxPrice = 9999999999.99

// Listing 已发布商品
// 每次提交成功只创建一条，创建后不再修改
type Listing struct {
	BaseModel

	// 归属
	UserID int64 `gorm:"index;not null;comment:所属用户ID" json:"user_id"`

	// 商品信息
	Title       string  `gorm:"size:100;not null;comment:标题" json:"title"`
	Description string  `gorm:"size:1000;not null;comment:描述" json:"description"`
	Brand       string  `gorm:"size:64;not null;comment:品牌" json:"brand"`
	Category    string  `gorm:"size:32;not null;index;comment:品类" json:"category"`
	Condition   string  `gorm:"size:32;not null;comment:成色" json:"condition"`
	Price       float64 `gorm:"type:decimal(12,2);not null;comment:价格" json:"price"`
}

func (Listing) TableName() string {
	return "listings"
}
