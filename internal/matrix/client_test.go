package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"maunium.net/go/mautrix"
)

const testToken = "syt_secret"

// memberEvent is an m.room.member state event as the homeserver sends it.
type memberEvent struct {
	Type     string            `json:"type"`
	StateKey string            `json:"state_key"`
	Content  map[string]string `json:"content"`
}

// fakeHomeserver is a minimal in-memory homeserver.
type fakeHomeserver struct {
	mu       sync.Mutex
	joined   []string
	members  map[string][]memberEvent
	aliases  map[string]string
	left     []string
	forgot   []string
	messages map[string]string // txn id -> body
	syncQS   url.Values

	membersQS url.Values
}

func newFakeHomeserver() *fakeHomeserver {
	return &fakeHomeserver{
		members:  make(map[string][]memberEvent),
		aliases:  make(map[string]string),
		messages: make(map[string]string),
	}
}

func param(r *http.Request, key string) string {
	v, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil {
		return chi.URLParam(r, key)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeHomeserver) router() http.Handler {
	r := chi.NewRouter()
	r.Route("/_matrix/client/v3", func(r chi.Router) {
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Identifier struct {
					User string `json:"user"`
				} `json:"identifier"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Password != "hunter2" {
				writeJSON(w, http.StatusForbidden, map[string]string{"errcode": "M_FORBIDDEN", "error": "Invalid password"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"user_id":      "@" + body.Identifier.User + ":hs1",
				"access_token": testToken,
				"device_id":    "DEV",
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Header.Get("Authorization") != "Bearer "+testToken {
						writeJSON(w, http.StatusUnauthorized, map[string]string{"errcode": "M_UNKNOWN_TOKEN"})
						return
					}
					next.ServeHTTP(w, r)
				})
			})

			r.Get("/joined_rooms", func(w http.ResponseWriter, _ *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				writeJSON(w, http.StatusOK, map[string]any{"joined_rooms": f.joined})
			})
			r.Get("/rooms/{roomID}/members", func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				roomID := param(r, "roomID")
				if roomID == "!busy:hs1" {
					writeJSON(w, http.StatusTooManyRequests, map[string]any{"errcode": "M_LIMIT_EXCEEDED", "retry_after_ms": 1500})
					return
				}
				if roomID == "!broken:hs1" {
					writeJSON(w, http.StatusBadGateway, map[string]string{"errcode": "M_UNKNOWN"})
					return
				}
				f.membersQS = r.URL.Query()
				chunk, ok := f.members[roomID]
				if !ok {
					writeJSON(w, http.StatusForbidden, map[string]string{"errcode": "M_FORBIDDEN", "error": "not in room"})
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"chunk": chunk})
			})
			r.Get("/directory/room/{alias}", func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				id, ok := f.aliases[param(r, "alias")]
				if !ok {
					writeJSON(w, http.StatusNotFound, map[string]string{"errcode": "M_NOT_FOUND"})
					return
				}
				writeJSON(w, http.StatusOK, map[string]string{"room_id": id})
			})
			r.Post("/join/{target}", func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				target := param(r, "target")
				if id, ok := f.aliases[target]; ok {
					target = id
				}
				f.joined = append(f.joined, target)
				writeJSON(w, http.StatusOK, map[string]string{"room_id": target})
			})
			r.Post("/rooms/{roomID}/leave", func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.left = append(f.left, param(r, "roomID"))
				writeJSON(w, http.StatusOK, map[string]any{})
			})
			r.Post("/rooms/{roomID}/forget", func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.forgot = append(f.forgot, param(r, "roomID"))
				writeJSON(w, http.StatusOK, map[string]any{})
			})
			r.Put("/rooms/{roomID}/send/m.room.message/{txnID}", func(w http.ResponseWriter, r *http.Request) {
				var msg struct {
					MsgType string `json:"msgtype"`
					Body    string `json:"body"`
				}
				_ = json.NewDecoder(r.Body).Decode(&msg)
				f.mu.Lock()
				defer f.mu.Unlock()
				f.messages[param(r, "txnID")] = msg.Body
				writeJSON(w, http.StatusOK, map[string]string{"event_id": "$ev" + param(r, "txnID")})
			})
			r.Get("/sync", func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				f.syncQS = r.URL.Query()
				f.mu.Unlock()
				_, _ = w.Write([]byte(`{
					"rooms": {
						"join": {"!b:hs1": {}, "!a:hs1": {}},
						"leave": {"!z:hs2": {}},
						"invite": {
							"!i2:hs2": {"invite_state": {"events": []}},
							"!i1:hs2": {"invite_state": {"events": [
								{"type": "m.room.name", "content": {"name": "x"}},
								{"type": "m.room.canonical_alias", "state_key": "", "content": {"alias": "#one:hs2"}}
							]}}
						}
					}
				}`))
			})
		})
	})
	return r
}

func member(userID, membership string) memberEvent {
	return memberEvent{
		Type:     "m.room.member",
		StateKey: userID,
		Content:  map[string]string{"membership": membership},
	}
}

func newTestClient(t *testing.T, f *fakeHomeserver, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)

	opts = append([]Option{WithAccessToken(testToken, "@traveller:hs1")}, opts...)
	c, err := NewClient(srv.URL, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://matrix.example.org", false},
		{"trailing slash", "https://matrix.example.org/", false},
		{"no scheme", "matrix.example.org", true},
		{"ftp", "ftp://matrix.example.org", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidHomeserver) {
				t.Errorf("error = %v, want ErrInvalidHomeserver", err)
			}
		})
	}
}

func TestClientRooms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFakeHomeserver()
	f.joined = []string{"!r1:hs1", "!r2:hs2"}
	f.members["!r1:hs1"] = []memberEvent{
		member("@a:hs1", "join"),
		member("@gone:hs1", "leave"),
		member("@b:hs2:8448", "join"),
	}
	f.aliases["#lobby:hs1"] = "!r3:hs1"
	c := newTestClient(t, f)

	t.Run("joined rooms", func(t *testing.T) {
		t.Parallel()
		rooms, err := c.JoinedRooms(ctx)
		if err != nil {
			t.Fatalf("JoinedRooms() error = %v", err)
		}
		if len(rooms) < 2 || rooms[0] != "!r1:hs1" || rooms[1] != "!r2:hs2" {
			t.Errorf("JoinedRooms() = %v", rooms)
		}
	})

	t.Run("members keeps only joined", func(t *testing.T) {
		t.Parallel()
		members, err := c.Members(ctx, "!r1:hs1")
		if err != nil {
			t.Fatalf("Members() error = %v", err)
		}
		want := []string{"@a:hs1", "@b:hs2:8448"}
		if strings.Join(members, ",") != strings.Join(want, ",") {
			t.Errorf("Members() = %v, want %v", members, want)
		}
	})

	t.Run("members error keeps the errcode", func(t *testing.T) {
		t.Parallel()
		_, err := c.Members(ctx, "!unknown:hs1")
		if !errors.Is(err, mautrix.MForbidden) {
			t.Fatalf("Members() error = %v, want M_FORBIDDEN", err)
		}
		if IsTemporary(err) {
			t.Error("403 reported as temporary")
		}
	})

	t.Run("resolve alias", func(t *testing.T) {
		t.Parallel()
		id, err := c.ResolveAlias(ctx, "#lobby:hs1")
		if err != nil {
			t.Fatalf("ResolveAlias() error = %v", err)
		}
		if id != "!r3:hs1" {
			t.Errorf("ResolveAlias() = %q, want !r3:hs1", id)
		}

		if id, _ := c.RoomID(ctx, "!direct:hs1"); id != "!direct:hs1" {
			t.Errorf("RoomID(id) = %q", id)
		}
		if id, _ := c.RoomID(ctx, "#lobby:hs1"); id != "!r3:hs1" {
			t.Errorf("RoomID(alias) = %q", id)
		}
	})
}

func TestClientMembershipChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFakeHomeserver()
	f.aliases["#lobby:hs1"] = "!r3:hs1"
	c := newTestClient(t, f)

	id, err := c.Join(ctx, "#lobby:hs1")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if id != "!r3:hs1" {
		t.Errorf("Join() = %q, want !r3:hs1", id)
	}
	if err := c.Leave(ctx, id); err != nil {
		t.Fatalf("Leave() error = %v", err)
	}
	if err := c.Forget(ctx, id); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.left) != 1 || f.left[0] != "!r3:hs1" {
		t.Errorf("left = %v", f.left)
	}
	if len(f.forgot) != 1 || f.forgot[0] != "!r3:hs1" {
		t.Errorf("forgot = %v", f.forgot)
	}
}

func TestClientSendText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFakeHomeserver()
	c := newTestClient(t, f)

	for _, body := range []string{"first", "second"} {
		if _, err := c.SendText(ctx, "!ctl:hs1", body); err != nil {
			t.Fatalf("SendText() error = %v", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) != 2 {
		t.Fatalf("distinct txn ids = %d, want 2", len(f.messages))
	}
	bodies := make([]string, 0, len(f.messages))
	for _, body := range f.messages {
		bodies = append(bodies, body)
	}
	slices.Sort(bodies)
	if strings.Join(bodies, ",") != "first,second" {
		t.Errorf("message bodies = %v", bodies)
	}
}

func TestClientMembershipSnapshot(t *testing.T) {
	t.Parallel()

	f := newFakeHomeserver()
	c := newTestClient(t, f)

	snap, err := c.MembershipSnapshot(context.Background())
	if err != nil {
		t.Fatalf("MembershipSnapshot() error = %v", err)
	}

	if strings.Join(snap.Joined, ",") != "!a:hs1,!b:hs1" {
		t.Errorf("Joined = %v", snap.Joined)
	}
	if strings.Join(snap.Left, ",") != "!z:hs2" {
		t.Errorf("Left = %v", snap.Left)
	}
	want := []Invite{{RoomID: "!i1:hs2", CanonicalAlias: "#one:hs2"}, {RoomID: "!i2:hs2"}}
	if len(snap.Invited) != len(want) {
		t.Fatalf("Invited = %v, want %v", snap.Invited, want)
	}
	for i := range want {
		if snap.Invited[i] != want[i] {
			t.Errorf("Invited[%d] = %+v, want %+v", i, snap.Invited[i], want[i])
		}
	}
	if !snap.Known("!z:hs2") || !snap.Known("!i2:hs2") || snap.Known("!new:hs1") {
		t.Error("Known() reports wrong membership")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncQS.Get("full_state") != "true" {
		t.Errorf("full_state = %q", f.syncQS.Get("full_state"))
	}
	if !strings.Contains(f.syncQS.Get("filter"), "m.room.canonical_alias") {
		t.Errorf("filter = %q", f.syncQS.Get("filter"))
	}
}

func TestClientLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := httptest.NewServer(newFakeHomeserver().router())
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("unauthenticated calls are refused locally", func(t *testing.T) {
		t.Parallel()
		if _, err := c.JoinedRooms(ctx); !errors.Is(err, ErrNotLoggedIn) {
			t.Errorf("JoinedRooms() error = %v, want ErrNotLoggedIn", err)
		}
	})

	t.Run("good password", func(t *testing.T) {
		t.Parallel()
		creds, err := c.Login(ctx, "traveller", "hunter2", "traveller")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if creds.UserID != "@traveller:hs1" || creds.AccessToken != testToken || creds.DeviceID != "DEV" {
			t.Errorf("Login() = %+v", creds)
		}
	})

	t.Run("bad password", func(t *testing.T) {
		t.Parallel()
		_, err := c.Login(ctx, "traveller", "nope", "")
		if !errors.Is(err, mautrix.MForbidden) {
			t.Errorf("Login() error = %v, want M_FORBIDDEN", err)
		}
	})
}

func TestIsTemporary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newTestClient(t, newFakeHomeserver())

	tests := []struct {
		name   string
		roomID string
		want   bool
	}{
		{"rate limited", "!busy:hs1", true},
		{"bad gateway", "!broken:hs1", true},
		{"forbidden", "!unknown:hs1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.Members(ctx, tt.roomID)
			if err == nil {
				t.Fatal("Members() error = nil")
			}
			if got := IsTemporary(err); got != tt.want {
				t.Errorf("IsTemporary(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}

	t.Run("plain errors", func(t *testing.T) {
		t.Parallel()
		if IsTemporary(nil) || IsTemporary(errors.New("boom")) {
			t.Error("plain errors reported as temporary")
		}
	})

	t.Run("rate limit keeps the errcode", func(t *testing.T) {
		t.Parallel()
		_, err := c.Members(ctx, "!busy:hs1")
		if !errors.Is(err, mautrix.MLimitExceeded) {
			t.Errorf("Members() error = %v, want M_LIMIT_EXCEEDED", err)
		}
	})
}

func TestMembersRequestsJoinedOnly(t *testing.T) {
	t.Parallel()

	f := newFakeHomeserver()
	f.members["!r1:hs1"] = []memberEvent{member("@a:hs1", "join")}
	c := newTestClient(t, f)

	if _, err := c.Members(context.Background(), "!r1:hs1"); err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if got := f.membersQS.Get("membership"); got != "join" {
		t.Errorf("membership query = %q, want join", got)
	}
}

func TestServerName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		userID  string
		want    string
		wantErr bool
	}{
		{"@a:hs1", "hs1", false},
		{"@b:matrix.example.org:8448", "matrix.example.org:8448", false},
		{"@nobody", "", true},
		{"@empty:", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			t.Parallel()
			got, err := ServerName(tt.userID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ServerName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidUserID) {
				t.Errorf("error = %v, want ErrInvalidUserID", err)
			}
			if got != tt.want {
				t.Errorf("ServerName() = %q, want %q", got, tt.want)
			}
		})
	}
}
