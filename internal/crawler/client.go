package crawler

import (
	"context"

	"github.com/nao1215/traveller/internal/matrix"
)

// MemberSource fetches the joined members of a room.
type MemberSource interface {
	Members(ctx context.Context, roomID string) ([]string, error)
}

// MembershipClient is what the join flow needs from the homeserver.
type MembershipClient interface {
	MembershipSnapshot(ctx context.Context) (*matrix.Snapshot, error)
	ResolveAlias(ctx context.Context, alias string) (string, error)
	Join(ctx context.Context, idOrAlias string) (string, error)
}

// LeaveClient is what the leave flow needs from the homeserver.
type LeaveClient interface {
	JoinedRooms(ctx context.Context) ([]string, error)
	Leave(ctx context.Context, roomID string) error
	Forget(ctx context.Context, roomID string) error
}

// compile-time checks that the Matrix client serves every flow
var (
	_ MemberSource     = (*matrix.Client)(nil)
	_ MembershipClient = (*matrix.Client)(nil)
	_ LeaveClient      = (*matrix.Client)(nil)
)
