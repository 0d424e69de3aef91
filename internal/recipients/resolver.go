package recipients

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"broadcaster/internal/models"
)

// ErrAdminFetchFailed is returned when the admin list of the group cannot be read
var ErrAdminFetchFailed = errors.New("failed to fetch group admins")

// DefaultProbeConcurrency bounds the number of membership probes in flight
const DefaultProbeConcurrency = 4

// Gateway is the part of the messaging gateway the resolver needs
type Gateway interface {
	FetchAdmins(ctx context.Context, groupID int64) ([]models.Member, error)
	ProbeMembership(ctx context.Context, groupID, accountID int64) (models.MemberStatus, error)
}

// Directory lists the accounts known to the bot
type Directory interface {
	ListKnown() iter.Seq[models.DirectoryEntry]
}

// Resolution is the candidate set computed for a group
type Resolution struct {
	Admins  []models.Candidate
	Members []models.Candidate
}

// All returns admins followed by members
func (r Resolution) All() []models.Candidate {
	all := make([]models.Candidate, 0, len(r.Admins)+len(r.Members))
	all = append(all, r.Admins...)
	return append(all, r.Members...)
}

// Len returns the number of candidates
func (r Resolution) Len() int {
	return len(r.Admins) + len(r.Members)
}

// Resolver computes broadcast candidates for a group
type Resolver struct {
	gateway     Gateway
	directory   Directory
	concurrency int
	logger      *zap.Logger
}

// NewResolver creates a resolver. concurrency <= 0 falls back to DefaultProbeConcurrency.
func NewResolver(gateway Gateway, directory Directory, concurrency int, logger *zap.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultProbeConcurrency
	}
	return &Resolver{
		gateway:     gateway,
		directory:   directory,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Resolve returns the group admins plus every known account still in the group.
//
// Resolution rules:
// 1. The admin list is authoritative and always included, in gateway order
// 2. Every known non-admin account is probed for membership
// 3. Accounts whose probe fails or reports left/removed are skipped
// 4. Members follow admins, in directory order
// 5. An account present in both lists appears once, as an admin
func (r *Resolver) Resolve(ctx context.Context, groupID int64) (Resolution, error) {
	admins, err := r.gateway.FetchAdmins(ctx, groupID)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w %d: %w", ErrAdminFetchFailed, groupID, err)
	}

	adminCandidates := lo.UniqBy(lo.Map(admins, func(m models.Member, _ int) models.Candidate {
		return models.Candidate{
			AccountID:   m.AccountID,
			DisplayName: m.DisplayName,
			Handle:      m.Handle,
			IsAdmin:     true,
		}
	}), func(c models.Candidate) int64 {
		return c.AccountID
	})
	adminIDs := lo.SliceToMap(adminCandidates, func(c models.Candidate) (int64, struct{}) {
		return c.AccountID, struct{}{}
	})

	var known []models.DirectoryEntry
	for entry := range r.directory.ListKnown() {
		if _, isAdmin := adminIDs[entry.AccountID]; isAdmin {
			continue
		}
		known = append(known, entry)
	}

	// Each probe writes only its own slot, keeping directory order
	included := make([]bool, len(known))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, entry := range known {
		g.Go(func() error {
			status, err := r.gateway.ProbeMembership(ctx, groupID, entry.AccountID)
			if err != nil {
				r.logger.Debug("Skipping account after failed membership probe",
					zap.Error(err),
					zap.Int64("group_id", groupID),
					zap.Int64("account_id", entry.AccountID),
				)
				return nil
			}
			included[i] = status.IsMember()
			return nil
		})
	}
	// Probe failures are never returned, so Wait cannot fail
	_ = g.Wait()

	members := lo.FilterMap(known, func(entry models.DirectoryEntry, i int) (models.Candidate, bool) {
		return models.Candidate{
			AccountID:   entry.AccountID,
			DisplayName: entry.DisplayName,
			Handle:      entry.Handle,
		}, included[i]
	})

	r.logger.Info("Resolved broadcast candidates",
		zap.Int64("group_id", groupID),
		zap.Int("admin_count", len(adminCandidates)),
		zap.Int("member_count", len(members)),
		zap.Int("probed_count", len(known)),
	)

	return Resolution{Admins: adminCandidates, Members: members}, nil
}
