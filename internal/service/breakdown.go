package service

import "math"

// 平台费率
const (
	CommissionRate  = 0.10
	ServiceFeeRate  = 0.05
	PlatformFeeRate = 0.03
)

// PriceBreakdown 卖家到手价拆分
type PriceBreakdown struct {
	Price       float64 `json:"price"`
	Commission  float64 `json:"commission"`
	ServiceFee  float64 `json:"service_fee"`
	PlatformFee float64 `json:"platform_fee"`
	Payout      float64 `json:"payout"`
}

// CalculateBreakdown 按费率计算，各项四舍五入到分
func CalculateBreakdown(price float64) PriceBreakdown {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}
	commission := roundCents(price * CommissionRate)
	serviceFee := roundCents(price * ServiceFeeRate)
	platformFee := roundCents(price * PlatformFeeRate)
	return PriceBreakdown{
		Price:       roundCents(price),
		Commission:  commission,
		ServiceFee:  serviceFee,
		PlatformFee: platformFee,
		Payout:      roundCents(price - commission - serviceFee - platformFee),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
