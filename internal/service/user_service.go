package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"speakpost/internal/repository"
	"speakpost/internal/transfer"
)

type UserService interface {
	AccountInfo(ctx context.Context, id int64) (*transfer.AccountInfo, error)
}

type userService struct {
	u  repository.UserRepository
	cr repository.ConnectionRepository
	sr repository.SubscriptionRepository
}

func NewUserService(u repository.UserRepository, cr repository.ConnectionRepository, sr repository.SubscriptionRepository) UserService {
	return &userService{
		u:  u,
		cr: cr,
		sr: sr,
	}
}

// AccountInfo assembles the dashboard view of an account: profile, whether a
// LinkedIn connection is active (and as whom), and the subscription state.
// Connection and subscription lookups are best-effort; the profile is not.
func (s *userService) AccountInfo(ctx context.Context, id int64) (*transfer.AccountInfo, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info")
	}
	if !isExist {
		err = errors.New("user not found")
		slog.Info(err.Error())
		return nil, err
	}

	info := &transfer.AccountInfo{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		ProfilePicture:     user.ProfilePicture,
		SubscriptionStatus: "free",
	}

	conn, connected, err := s.cr.GetActiveByUserID(ctx, id)
	if err != nil {
		slog.Info(err.Error())
	} else if connected {
		info.LinkedInConnected = true
		var profile transfer.LinkedInUserInfo
		if json.Unmarshal(conn.ProfileData, &profile) == nil {
			info.LinkedInName = profile.Name
		}
	}

	sub, hasSub, err := s.sr.GetByUserID(ctx, id)
	if err != nil {
		slog.Info(err.Error())
	} else if hasSub {
		info.SubscriptionStatus = sub.Status
		info.SubscriptionEnds = &sub.SubscriptionEndDate
	}

	return info, nil
}
