package app

import (
	"fmt"

	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/errors"
)

func (p UserProfile) Validate() error {
	if !common.ValidateAddress(p.UserAddress) {
		return &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", p.UserAddress)}
	}

	if p.Points < 0 {
		return &errors.ValidationError{Err: fmt.Errorf("points can not be negative")}
	}

	if p.DailyStreak < 0 {
		return &errors.ValidationError{Err: fmt.Errorf("daily streak can not be negative")}
	}

	for _, id := range p.ClaimedTaskIDs {
		if id == "" {
			return &errors.ValidationError{Err: fmt.Errorf("empty task id in claimed tasks")}
		}
	}

	return nil
}
