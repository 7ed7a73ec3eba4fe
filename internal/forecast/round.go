package forecast

import "github.com/shopspring/decimal"

// round rounds half away from zero at the given decimal places.
// float 이진 오차 없이 4dp/2dp 저장값을 안정적으로 만든다.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func ptr[T any](v T) *T {
	return &v
}
