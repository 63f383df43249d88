package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/reputation"
)

type SubmitRatingRequest struct {
	UserID         uuid.UUID `json:"userId" binding:"required"`
	TransactionID  uuid.UUID `json:"transactionId" binding:"required"`
	OnTimeDelivery int       `json:"onTimeDelivery"`
	CargoCondition int       `json:"cargoCondition"`
	Communication  int       `json:"communication"`
	Documentation  int       `json:"documentation"`
}

func (r SubmitRatingRequest) Input() reputation.SubmitRatingInput {
	return reputation.SubmitRatingInput{
		UserID:        r.UserID,
		TransactionID: r.TransactionID,
		Scores: entity.RatingScores{
			OnTimeDelivery: r.OnTimeDelivery,
			CargoCondition: r.CargoCondition,
			Communication:  r.Communication,
			Documentation:  r.Documentation,
		},
	}
}

type RatingResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	RaterID        uuid.UUID `json:"raterId"`
	TransactionID  uuid.UUID `json:"transactionId"`
	OnTimeDelivery int       `json:"onTimeDelivery"`
	CargoCondition int       `json:"cargoCondition"`
	Communication  int       `json:"communication"`
	Documentation  int       `json:"documentation"`
	OverallScore   int       `json:"overallScore"`
	CreatedAt      time.Time `json:"createdAt"`
}

func ToRatingResponse(r *entity.Rating) RatingResponse {
	return RatingResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		RaterID:        r.RaterID,
		TransactionID:  r.TransactionID,
		OnTimeDelivery: r.OnTimeDelivery,
		CargoCondition: r.CargoCondition,
		Communication:  r.Communication,
		Documentation:  r.Documentation,
		OverallScore:   r.OverallScore,
		CreatedAt:      r.CreatedAt,
	}
}

func ToRatingResponses(items []*entity.Rating) []RatingResponse {
	responses := make([]RatingResponse, 0, len(items))
	for _, r := range items {
		responses = append(responses, ToRatingResponse(r))
	}
	return responses
}

type SubmitRatingResponse struct {
	Metric   RatingResponse `json:"metric"`
	RWSScore int            `json:"rwsScore"`
}

type ReputationResponse struct {
	UserID   uuid.UUID        `json:"userId"`
	RWSScore int              `json:"rwsScore"`
	Metrics  []RatingResponse `json:"metrics"`
}

func ToReputationResponse(p *reputation.Profile) ReputationResponse {
	return ReputationResponse{
		UserID:   p.User.ID,
		RWSScore: p.User.Reputation.RWSScore,
		Metrics:  ToRatingResponses(p.Ratings),
	}
}

type ExtendedReputationResponse struct {
	UserID            uuid.UUID        `json:"userId"`
	RWSScore          int              `json:"rwsScore"`
	OTDRate           float64          `json:"otdRate"`
	AcceptanceRate    float64          `json:"acceptanceRate"`
	ReliabilityScore  float64          `json:"reliabilityScore"`
	TotalTransactions int              `json:"totalTransactions"`
	OnTimeDeliveries  int              `json:"onTimeDeliveries"`
	LateDeliveries    int              `json:"lateDeliveries"`
	TotalBids         int              `json:"totalBids"`
	AcceptedBids      int              `json:"acceptedBids"`
	IsRecommended     bool             `json:"isRecommended"`
	Metrics           []RatingResponse `json:"metrics"`
}

func ToExtendedReputationResponse(p *reputation.Profile) ExtendedReputationResponse {
	rep := p.User.Reputation
	return ExtendedReputationResponse{
		UserID:            p.User.ID,
		RWSScore:          rep.RWSScore,
		OTDRate:           rep.OTDRate,
		AcceptanceRate:    rep.AcceptanceRate,
		ReliabilityScore:  rep.ReliabilityScore,
		TotalTransactions: rep.TotalTransactions,
		OnTimeDeliveries:  rep.OnTimeDeliveries,
		LateDeliveries:    rep.LateDeliveries,
		TotalBids:         rep.TotalBids,
		AcceptedBids:      rep.AcceptedBids,
		IsRecommended:     rep.IsRecommended,
		Metrics:           ToRatingResponses(p.Ratings),
	}
}
