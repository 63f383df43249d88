package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const (
	MinSubScore = 1
	MaxSubScore = 5
)

// Rating - оценка участника сделки контрагентом (RWS-метрика). Неизменяема.
type Rating struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	RaterID        uuid.UUID
	TransactionID  uuid.UUID
	OnTimeDelivery int
	CargoCondition int
	Communication  int
	Documentation  int
	OverallScore   int
	CreatedAt      time.Time
}

type RatingScores struct {
	OnTimeDelivery int
	CargoCondition int
	Communication  int
	Documentation  int
}

func (s RatingScores) Validate() error {
	fields := map[string]string{}
	check := func(name string, v int) {
		if v < MinSubScore || v > MaxSubScore {
			fields[name] = "оценка должна быть от 1 до 5"
		}
	}
	check("onTimeDelivery", s.OnTimeDelivery)
	check("cargoCondition", s.CargoCondition)
	check("communication", s.Communication)
	check("documentation", s.Documentation)
	if len(fields) > 0 {
		return apperror.Validation("некорректные оценки", fields)
	}
	return nil
}

// Overall - округлённое среднее четырёх оценок.
func (s RatingScores) Overall() int {
	sum := s.OnTimeDelivery + s.CargoCondition + s.Communication + s.Documentation
	return int(math.Round(float64(sum) / 4))
}

func NewRating(userID, raterID, transactionID uuid.UUID, scores RatingScores) (*Rating, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	if userID == raterID {
		return nil, apperror.Validation("нельзя оценить самого себя", map[string]string{
			"userId": "должен быть контрагентом по сделке",
		})
	}
	return &Rating{
		ID:             uuid.New(),
		UserID:         userID,
		RaterID:        raterID,
		TransactionID:  transactionID,
		OnTimeDelivery: scores.OnTimeDelivery,
		CargoCondition: scores.CargoCondition,
		Communication:  scores.Communication,
		Documentation:  scores.Documentation,
		OverallScore:   scores.Overall(),
		CreatedAt:      time.Now(),
	}, nil
}
