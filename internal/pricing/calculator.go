// Package pricing 提供订单金额计算的纯函数
// 所有金额对外保留两位小数，采用四舍五入
package pricing

import "github.com/shopspring/decimal"

// LineTotal 计算单行金额：单价 × 数量 × (1 - 行折扣)，结果保留两位小数
// 折扣为 0 表示无折扣
func LineTotal(unitPrice decimal.Decimal, quantity int, discount decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	factor := decimal.NewFromInt(1).Sub(discount)
	return unitPrice.Mul(qty).Mul(factor).Round(2)
}

// OrderTotal 汇总各行金额，结果保留两位小数
func OrderTotal(lineTotals []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, lt := range lineTotals {
		total = total.Add(lt)
	}
	return total.Round(2)
}

// OrderTotalDiscounted 对订单总额套用整单折扣：总额 × (1 - 整单折扣)，
// 结果保留两位小数
func OrderTotalDiscounted(total, globalDiscount decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(globalDiscount)
	return total.Mul(factor).Round(2)
}

// ValidDiscount 折扣必须落在 [0,1) 区间
func ValidDiscount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(decimal.NewFromInt(1))
}
