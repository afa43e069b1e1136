package app

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/errors"
)

// TokenReader is the per-token read side of the contract gateway.
type TokenReader interface {
	GetToken(ctx context.Context, id int64) (*MintedToken, error)
}

// OwnershipScanner discovers which of the most recently minted certificate
// tokens belong to a user by bounded backward iteration. The window bounds
// the cost of a scan against an ever-growing mint count; certificates
// older than the window are not discoverable here.
type OwnershipScanner struct {
	reader TokenReader
	window int64
}

const defaultScanWindow = 50

func NewOwnershipScanner(reader TokenReader, window int64) *OwnershipScanner {
	if window <= 0 {
		window = defaultScanWindow
	}
	return &OwnershipScanner{reader, window}
}

// Scan returns the user's tokens among ids (total-window, total], newest
// first. A total of zero or an empty address returns an empty result with
// no reads issued. A failed read of an individual id counts as "not owned"
// and never aborts the scan; only cancellation does.
func (s *OwnershipScanner) Scan(ctx context.Context, userAddress string, total int64) ([]MintedToken, error) {
	if total <= 0 || userAddress == "" {
		return []MintedToken{}, nil
	}

	user, err := common.AddressFromString(userAddress)
	if err != nil {
		return nil, &errors.ValidationError{Err: err}
	}

	startID := total - s.window + 1
	if startID < 1 {
		startID = 1
	}

	owned := []MintedToken{}
	for id := startID; id <= total; id++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		token, err := s.reader.GetToken(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{
				"tokenID": id,
			}).WithError(err).Debug("Skipping unreadable token")
			continue
		}

		if token.Student == user {
			owned = append(owned, *token)
		}
	}

	// Newest first
	for i, j := 0, len(owned)-1; i < j; i, j = i+1, j-1 {
		owned[i], owned[j] = owned[j], owned[i]
	}

	return owned, nil
}
