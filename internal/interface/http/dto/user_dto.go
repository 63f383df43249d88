package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/auth"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/dashboard"
)

type DevLoginRequest struct {
	Email       string  `json:"email" binding:"required"`
	Role        string  `json:"role"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	CompanyName *string `json:"companyName"`
	IIN         *string `json:"iin"`
	BIN         *string `json:"bin"`
}

func (r DevLoginRequest) Input() auth.DevLoginInput {
	return auth.DevLoginInput{
		Email:       r.Email,
		Role:        r.Role,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		CompanyName: r.CompanyName,
		IIN:         r.IIN,
		BIN:         r.BIN,
	}
}

type UpdateProfileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	CompanyName *string `json:"companyName"`
	Phone       *string `json:"phone"`
	IIN         *string `json:"iin"`
	BIN         *string `json:"bin"`
}

func (r UpdateProfileRequest) Update() entity.ProfileUpdate {
	return entity.ProfileUpdate{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		CompanyName: r.CompanyName,
		Phone:       r.Phone,
		IIN:         r.IIN,
		BIN:         r.BIN,
	}
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type SetRoleRequest struct {
	TargetUserID uuid.UUID `json:"targetUserId" binding:"required"`
	Role         string    `json:"role" binding:"required"`
}

type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	CompanyName   *string    `json:"companyName"`
	Phone         *string    `json:"phone"`
	Role          string     `json:"role"`
	IIN           *string    `json:"iin"`
	BIN           *string    `json:"bin"`
	EDSCertID     *string    `json:"edsCertId"`
	EDSCertExpiry *time.Time `json:"edsCertExpiry"`
	RWSScore      int        `json:"rwsScore"`
	IsRecommended bool       `json:"isRecommended"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		CompanyName:   u.CompanyName,
		Phone:         u.Phone,
		Role:          string(u.Role),
		IIN:           u.IIN,
		BIN:           u.BIN,
		EDSCertID:     u.EDSCertID,
		EDSCertExpiry: u.EDSCertExpiry,
		RWSScore:      u.Reputation.RWSScore,
		IsRecommended: u.Reputation.IsRecommended,
	}
}

type DevLoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

func ToDevLoginResponse(r *auth.DevLoginResult) DevLoginResponse {
	return DevLoginResponse{
		AccessToken: r.Token.Token,
		ExpiresAt:   r.Token.ExpiresAt,
		User:        ToUserResponse(r.User),
	}
}

type DashboardResponse struct {
	ActiveCargo         int `json:"activeCargo"`
	InProgressCargo     int `json:"inProgressCargo"`
	CompletedCargo      int `json:"completedCargo"`
	TotalBids           int `json:"totalBids"`
	TotalTransactions   int `json:"totalTransactions"`
	ActiveTransactions  int `json:"activeTransactions"`
	UnreadNotifications int `json:"unreadNotifications"`
	RWSScore            int `json:"rwsScore"`
}

func ToDashboardResponse(s *dashboard.Summary) DashboardResponse {
	return DashboardResponse(*s)
}
