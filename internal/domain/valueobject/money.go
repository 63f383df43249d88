package valueobject

import (
	"fmt"
	"math"

	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const DefaultCurrency = "KZT"

type Money struct {
	Amount   float64
	Currency string
}

func NewMoney(amount float64, currency string) (Money, error) {
	if amount < 0 || math.IsNaN(amount) {
		return Money{}, apperror.Validation("сумма не может быть отрицательной", map[string]string{
			"amount": "должно быть неотрицательным числом",
		})
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: Round2(amount), Currency: currency}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

// Weight - вес груза в тоннах.
type Weight float64

func NewWeight(value float64) (Weight, error) {
	if value < 0 || math.IsNaN(value) {
		return 0, apperror.Validation("вес не может быть отрицательным", map[string]string{
			"weight": "должно быть неотрицательным числом",
		})
	}
	return Weight(Round2(value)), nil
}

func (w Weight) String() string {
	return fmt.Sprintf("%.2f", float64(w))
}

// Round2 округляет до двух знаков после запятой, как хранятся decimal(…,2) колонки.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
