package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// ErrNoRoomID is returned when the homeserver answers without a room id.
var ErrNoRoomID = errors.New("homeserver returned no room id")

// JoinedRooms lists the ids of the rooms the account is currently in.
func (c *Client) JoinedRooms(ctx context.Context) ([]string, error) {
	if err := c.authenticated(); err != nil {
		return nil, err
	}
	resp, err := c.cli.JoinedRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined rooms: %w", err)
	}
	rooms := make([]string, 0, len(resp.JoinedRooms))
	for _, roomID := range resp.JoinedRooms {
		rooms = append(rooms, string(roomID))
	}
	return rooms, nil
}

// Members returns the user ids currently joined to roomID, in the order the
// homeserver reports them.
func (c *Client) Members(ctx context.Context, roomID string) ([]string, error) {
	if err := c.authenticated(); err != nil {
		return nil, err
	}
	resp, err := c.cli.Members(ctx, id.RoomID(roomID), mautrix.ReqMembers{Membership: event.MembershipJoin})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members of %s: %w", roomID, err)
	}

	members := make([]string, 0, len(resp.Chunk))
	for _, evt := range resp.Chunk {
		if evt == nil || evt.StateKey == nil || *evt.StateKey == "" {
			continue
		}
		if evt.Type.Type != event.StateMember.Type || membership(evt) != event.MembershipJoin {
			continue
		}
		members = append(members, *evt.StateKey)
	}
	return members, nil
}

// membership reads the membership from the raw content, which is filled
// whether or not the event content was parsed.
func membership(evt *event.Event) event.Membership {
	m, _ := evt.Content.Raw["membership"].(string)
	return event.Membership(m)
}

// ResolveAlias returns the room id an alias points to.
func (c *Client) ResolveAlias(ctx context.Context, alias string) (string, error) {
	if err := c.authenticated(); err != nil {
		return "", err
	}
	resp, err := c.cli.ResolveAlias(ctx, id.RoomAlias(alias))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", alias, err)
	}
	if resp.RoomID == "" {
		return "", fmt.Errorf("%w: %s", ErrNoRoomID, alias)
	}
	return string(resp.RoomID), nil
}

// RoomID returns idOrAlias unchanged if it is a room id, or resolves it if it
// is an alias.
func (c *Client) RoomID(ctx context.Context, idOrAlias string) (string, error) {
	if strings.HasPrefix(idOrAlias, "#") {
		return c.ResolveAlias(ctx, idOrAlias)
	}
	return idOrAlias, nil
}

// Join joins a room by id or alias and returns the room id.
func (c *Client) Join(ctx context.Context, idOrAlias string) (string, error) {
	if err := c.authenticated(); err != nil {
		return "", err
	}
	resp, err := c.cli.JoinRoom(ctx, idOrAlias, nil)
	if err != nil {
		return "", fmt.Errorf("failed to join %s: %w", idOrAlias, err)
	}
	return string(resp.RoomID), nil
}

// Leave leaves roomID.
func (c *Client) Leave(ctx context.Context, roomID string) error {
	if err := c.authenticated(); err != nil {
		return err
	}
	if _, err := c.cli.LeaveRoom(ctx, id.RoomID(roomID)); err != nil {
		return fmt.Errorf("failed to leave %s: %w", roomID, err)
	}
	return nil
}

// Forget removes roomID from the account's room history. The account must
// have left the room first.
func (c *Client) Forget(ctx context.Context, roomID string) error {
	if err := c.authenticated(); err != nil {
		return err
	}
	if _, err := c.cli.ForgetRoom(ctx, id.RoomID(roomID)); err != nil {
		return fmt.Errorf("failed to forget %s: %w", roomID, err)
	}
	return nil
}

// SendText sends an m.text message to roomID and returns the event id.
func (c *Client) SendText(ctx context.Context, roomID, body string) (string, error) {
	if err := c.authenticated(); err != nil {
		return "", err
	}
	resp, err := c.cli.SendText(ctx, id.RoomID(roomID), body)
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", roomID, err)
	}
	return string(resp.EventID), nil
}

// Invite is a pending invitation.
type Invite struct {
	RoomID string
	// CanonicalAlias is the room's canonical alias from the stripped invite
	// state, empty if the inviter did not include one.
	CanonicalAlias string
}

// Snapshot is the account's membership state at one point in time.
// Every list is sorted by room id.
type Snapshot struct {
	Joined  []string
	Invited []Invite
	Left    []string
}

// Known reports whether roomID appears in any of the three sets.
func (s *Snapshot) Known(roomID string) bool {
	if slices.Contains(s.Joined, roomID) || slices.Contains(s.Left, roomID) {
		return true
	}
	return slices.ContainsFunc(s.Invited, func(inv Invite) bool { return inv.RoomID == roomID })
}

// syncFilter limits the sync response to canonical alias state and keeps
// rooms that were left. It is sent inline in place of a filter id.
var syncFilter = mustJSON(map[string]any{
	"presence":     map[string]any{"types": []string{}},
	"account_data": map[string]any{"types": []string{}},
	"room": map[string]any{
		"include_leave": true,
		"state":         map[string]any{"types": []string{event.StateCanonicalAlias.Type}},
		"timeline":      map[string]any{"limit": 0},
		"ephemeral":     map[string]any{"types": []string{}},
		"account_data":  map[string]any{"types": []string{}},
	},
})

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// MembershipSnapshot performs a full-state sync and returns the joined,
// invited and left room sets.
func (c *Client) MembershipSnapshot(ctx context.Context) (*Snapshot, error) {
	if err := c.authenticated(); err != nil {
		return nil, err
	}
	resp, err := c.cli.FullSyncRequest(ctx, mautrix.ReqSync{
		Timeout:   0,
		FilterID:  syncFilter,
		FullState: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync: %w", err)
	}

	snap := &Snapshot{
		Joined:  sortedRoomIDs(resp.Rooms.Join),
		Left:    sortedRoomIDs(resp.Rooms.Leave),
		Invited: make([]Invite, 0, len(resp.Rooms.Invite)),
	}
	for roomID, room := range resp.Rooms.Invite {
		inv := Invite{RoomID: string(roomID)}
		if room != nil {
			inv.CanonicalAlias = canonicalAlias(room.State.Events)
		}
		snap.Invited = append(snap.Invited, inv)
	}
	slices.SortFunc(snap.Invited, func(a, b Invite) int { return strings.Compare(a.RoomID, b.RoomID) })
	return snap, nil
}

// canonicalAlias returns the alias of the last canonical alias event in a
// stripped state list.
func canonicalAlias(events []*event.Event) string {
	alias := ""
	for _, evt := range events {
		if evt == nil || evt.Type.Type != event.StateCanonicalAlias.Type {
			continue
		}
		if a, ok := evt.Content.Raw["alias"].(string); ok && a != "" {
			alias = a
		}
	}
	return alias
}

func sortedRoomIDs[V any](m map[id.RoomID]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	slices.Sort(keys)
	return keys
}
