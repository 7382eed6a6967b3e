package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/repositories"
)

// memTournamentRepo mirrors the conditional-append semantics of the Mongo
// repository: AddPlayer only succeeds when the phone is absent and the
// roster has room.
type memTournamentRepo struct {
	mu           sync.Mutex
	tournaments  map[string]*models.Tournament
	addPlayerErr error
}

func newMemTournamentRepo() *memTournamentRepo {
	return &memTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (r *memTournamentRepo) Insert(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = primitive.NewObjectID()
	copied := *t
	r.tournaments[t.ID.Hex()] = &copied
	return nil
}

func (r *memTournamentRepo) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *t
	copied.Players = append([]string(nil), t.Players...)
	return &copied, nil
}

func (r *memTournamentRepo) AddPlayer(ctx context.Context, id, phone string, maxPlayers int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addPlayerErr != nil {
		return nil, r.addPlayerErr
	}
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, p := range t.Players {
		if p == phone {
			return nil, repositories.ErrRosterConflict
		}
	}
	if len(t.Players) >= maxPlayers {
		return nil, repositories.ErrRosterConflict
	}
	t.Players = append(t.Players, phone)
	copied := *t
	copied.Players = append([]string(nil), t.Players...)
	return &copied, nil
}

func (r *memTournamentRepo) FindByPlayer(ctx context.Context, phone string) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.tournaments {
		for _, p := range t.Players {
			if p == phone {
				out = append(out, *t)
				break
			}
		}
	}
	return out, nil
}

func (r *memTournamentRepo) FindUpcoming(ctx context.Context, after time.Time) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.tournaments {
		if t.StartTime.After(after) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func newTestTournamentService(t *testing.T) (*TournamentService, *memTournamentRepo, *memWalletRepo) {
	t.Helper()
	tournaments := newMemTournamentRepo()
	wallets := newMemWalletRepo()
	svc := NewTournamentService(tournaments, NewWalletService(wallets))
	return svc, tournaments, wallets
}

func createTournament(t *testing.T, svc *TournamentService, entryFee int64, maxPlayers int, start time.Time) *models.Tournament {
	t.Helper()
	created, err := svc.Create(context.Background(), &models.CreateTournamentRequest{
		Game:       "BGMI Squad",
		EntryFee:   entryFee,
		MaxPlayers: maxPlayers,
		StartTime:  start,
		RoomID:     "room-42",
		Password:   "hushhush",
	})
	require.NoError(t, err)
	return created
}

func TestJoinDebitsFeeAndAddsPlayer(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	start := time.Now().Add(2 * time.Hour)
	tournament := createTournament(t, svc, 100, 4, start)
	wallets.balances["9876543210"] = 500

	result, err := svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int64(400), result.Balance)
	assert.Equal(t, []string{"9876543210"}, result.Tournament.Players)

	// Two hours out, room credentials stay hidden even for the payer
	assert.Empty(t, result.Tournament.RoomID)
	assert.Empty(t, result.Tournament.Password)
}

func TestJoinRevealsRoomNearStart(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 100, 4, time.Now().Add(10*time.Minute))
	wallets.balances["9876543210"] = 500

	result, err := svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "room-42", result.Tournament.RoomID)
	assert.Equal(t, "hushhush", result.Tournament.Password)
}

func TestJoinUnknownTournament(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	wallets.balances["9876543210"] = 500

	_, err := svc.Join(context.Background(), primitive.NewObjectID().Hex(), "9876543210")
	assert.Equal(t, CodeTournamentNotFound, appCode(t, err))
}

func TestJoinInsufficientBalance(t *testing.T) {
	svc, tournaments, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 100, 4, time.Now().Add(time.Hour))
	wallets.balances["9876543210"] = 99

	_, err := svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	assert.Equal(t, CodeInsufficientBalance, appCode(t, err))

	// No partial effect: balance and roster unchanged
	assert.Equal(t, int64(99), wallets.balances["9876543210"])
	current, err := tournaments.FindByID(ctx, tournament.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, current.Players)
}

func TestJoinTwiceChargesOnce(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 100, 4, time.Now().Add(time.Hour))
	wallets.balances["9876543210"] = 500

	_, err := svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	require.NoError(t, err)

	_, err = svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	assert.Equal(t, CodeAlreadyJoined, appCode(t, err))
	assert.Equal(t, int64(400), wallets.balances["9876543210"], "second join is free of charge")
}

func TestJoinFullTournament(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 100, 2, time.Now().Add(time.Hour))
	for _, phone := range []string{"9000000001", "9000000002", "9000000003"} {
		wallets.balances[phone] = 500
	}

	_, err := svc.Join(ctx, tournament.ID.Hex(), "9000000001")
	require.NoError(t, err)
	_, err = svc.Join(ctx, tournament.ID.Hex(), "9000000002")
	require.NoError(t, err)

	_, err = svc.Join(ctx, tournament.ID.Hex(), "9000000003")
	assert.Equal(t, CodeTournamentFull, appCode(t, err))
	assert.Equal(t, int64(500), wallets.balances["9000000003"], "no charge for a full tournament")
}

func TestJoinFullBeatsInsufficientBalance(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 100, 1, time.Now().Add(time.Hour))
	wallets.balances["9000000001"] = 500
	_, err := svc.Join(ctx, tournament.ID.Hex(), "9000000001")
	require.NoError(t, err)

	// Broke player against a full tournament hears "full", not "broke"
	_, err = svc.Join(ctx, tournament.ID.Hex(), "9000000002")
	assert.Equal(t, CodeTournamentFull, appCode(t, err))
}

func TestJoinRefundsOnRosterFailure(t *testing.T) {
	svc, tournaments, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 100, 4, time.Now().Add(time.Hour))
	wallets.balances["9876543210"] = 500
	tournaments.addPlayerErr = errors.New("write conflict")

	_, err := svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	require.Error(t, err)
	assert.Equal(t, int64(500), wallets.balances["9876543210"], "debit was compensated")
}

func TestJoinFreeTournament(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	tournament := createTournament(t, svc, 0, 4, time.Now().Add(time.Hour))
	wallets.balances["9876543210"] = 250

	result, err := svc.Join(ctx, tournament.ID.Hex(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int64(250), result.Balance)
	assert.Equal(t, []string{"9876543210"}, result.Tournament.Players)
}

func TestJoinedFiltersFinishedTournaments(t *testing.T) {
	svc, _, wallets := newTestTournamentService(t)
	ctx := context.Background()

	now := time.Now()
	wallets.balances["9876543210"] = 1000

	fresh := createTournament(t, svc, 100, 4, now.Add(time.Hour))
	_, err := svc.Join(ctx, fresh.ID.Hex(), "9876543210")
	require.NoError(t, err)

	running := createTournament(t, svc, 100, 4, now.Add(-10*time.Minute))
	_, err = svc.Join(ctx, running.ID.Hex(), "9876543210")
	require.NoError(t, err)

	finished := createTournament(t, svc, 100, 4, now.Add(-time.Hour))
	_, err = svc.Join(ctx, finished.ID.Hex(), "9876543210")
	require.NoError(t, err)

	views, err := svc.Joined(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, views, 2, "finished tournament is filtered out")
	for _, v := range views {
		assert.NotEqual(t, finished.ID, v.ID)
	}

	// The running tournament exposes its room, the future one does not
	for _, v := range views {
		if v.ID == running.ID {
			assert.Equal(t, "room-42", v.RoomID)
		}
		if v.ID == fresh.ID {
			assert.Empty(t, v.RoomID)
		}
	}
}

func TestListUpcomingHidesRoomDetails(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	ctx := context.Background()

	createTournament(t, svc, 100, 4, time.Now().Add(2*time.Hour))
	soon := createTournament(t, svc, 100, 4, time.Now().Add(20*time.Minute))

	views, err := svc.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		if v.ID == soon.ID {
			assert.Equal(t, "room-42", v.RoomID, "inside the 30-minute window")
		} else {
			assert.Empty(t, v.RoomID)
			assert.Empty(t, v.Password)
		}
	}
}
