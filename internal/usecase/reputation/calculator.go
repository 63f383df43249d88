package reputation

import (
	"math"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

// Веса составляющих надёжности и пороги рекомендации.
const (
	otdWeight        = 0.4
	acceptanceWeight = 0.3
	ratingWeight     = 0.3
	ratingScale      = 20

	RecommendedMinTransactions = 5
	RecommendedMinOTD          = 85.0
	RecommendedMinAcceptance   = 70.0
	RecommendedMinRating       = 4.0
)

// History - исходные события, из которых выводится репутация пользователя.
type History struct {
	Deliveries   []repository.CompletedDelivery
	Bids         repository.BidStats
	RatingScores []int
}

// Calculate вычисляет репутацию по истории. Функция чистая: повторный вызов
// на тех же данных даёт тот же результат.
func Calculate(h History) entity.Reputation {
	var onTime, late int
	for _, d := range h.Deliveries {
		if d.CompletedAt == nil || d.DeliveryDate == nil {
			continue
		}
		if d.CompletedAt.After(*d.DeliveryDate) {
			late++
		} else {
			onTime++
		}
	}

	otdRate := percent(onTime, onTime+late)
	acceptanceRate := percent(h.Bids.Accepted, h.Bids.Total)
	avgRating := average(h.RatingScores)
	reliability := Reliability(otdRate, acceptanceRate, avgRating)

	return entity.Reputation{
		RWSScore:          int(math.Round(reliability)),
		OTDRate:           valueobject.Round2(otdRate),
		AcceptanceRate:    valueobject.Round2(acceptanceRate),
		ReliabilityScore:  valueobject.Round2(reliability),
		TotalTransactions: len(h.Deliveries),
		OnTimeDeliveries:  onTime,
		LateDeliveries:    late,
		TotalBids:         h.Bids.Total,
		AcceptedBids:      h.Bids.Accepted,
		IsRecommended:     IsRecommended(len(h.Deliveries), otdRate, acceptanceRate, avgRating),
	}
}

// Reliability - взвешенная сумма; средняя оценка 1-5 масштабируется на 0-100.
func Reliability(otdRate, acceptanceRate, avgRating float64) float64 {
	return otdRate*otdWeight + acceptanceRate*acceptanceWeight + avgRating*ratingScale*ratingWeight
}

// IsRecommended истинно, только если выполнены все четыре порога одновременно.
func IsRecommended(totalTransactions int, otdRate, acceptanceRate, avgRating float64) bool {
	return totalTransactions >= RecommendedMinTransactions &&
		otdRate >= RecommendedMinOTD &&
		acceptanceRate >= RecommendedMinAcceptance &&
		avgRating >= RecommendedMinRating
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
