// services/tournament_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/repositories"
	"github.com/khelarena/khelarena_backend/utils"
)

// TournamentRepo is the persistence contract for tournaments. AddPlayer
// appends the phone only when it is absent from the roster and the roster
// is below maxPlayers, returning repositories.ErrRosterConflict otherwise.
type TournamentRepo interface {
	Insert(ctx context.Context, t *models.Tournament) error
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	AddPlayer(ctx context.Context, id, phone string, maxPlayers int) (*models.Tournament, error)
	FindByPlayer(ctx context.Context, phone string) ([]models.Tournament, error)
	FindUpcoming(ctx context.Context, after time.Time) ([]models.Tournament, error)
}

// TournamentService owns tournament reads, the time-gated views, and the
// join transaction (wallet debit + roster append).
type TournamentService struct {
	tournaments TournamentRepo
	wallets     *WalletService
	keys        *utils.KeyMutex
	logger      *log.Logger
	now         func() time.Time
}

// NewTournamentService wires a tournament service
func NewTournamentService(tournaments TournamentRepo, wallets *WalletService) *TournamentService {
	return &TournamentService{
		tournaments: tournaments,
		wallets:     wallets,
		keys:        utils.NewKeyMutex(),
		logger:      log.New(os.Stdout, "[TOURNAMENT] ", log.LstdFlags),
		now:         time.Now,
	}
}

// Create inserts a new tournament with an empty roster
func (s *TournamentService) Create(ctx context.Context, req *models.CreateTournamentRequest) (*models.Tournament, error) {
	now := s.now()
	t := &models.Tournament{
		Game:       req.Game,
		EntryFee:   req.EntryFee,
		MaxPlayers: req.MaxPlayers,
		Players:    []string{},
		StartTime:  req.StartTime,
		RoomID:     req.RoomID,
		Password:   req.Password,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tournaments.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Join runs the join transaction for phone: existence, duplicate and
// capacity checks, then debit of the entry fee, then the conditional
// roster append. A roster append that fails after the debit is
// compensated with a credit, so a player is never charged without a seat.
// Per-phone serialization stops two concurrent joins from both passing
// the balance check before either debits.
func (s *TournamentService) Join(ctx context.Context, tournamentID, phone string) (*models.JoinTournamentResult, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return nil, ErrInvalidPhone()
	}

	s.keys.Lock(phone)
	defer s.keys.Unlock(phone)

	t, err := s.tournaments.FindByID(ctx, tournamentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTournamentNotFound()
	}
	if err != nil {
		return nil, err
	}

	for _, p := range t.Players {
		if p == phone {
			return nil, ErrAlreadyJoined()
		}
	}
	if len(t.Players) >= t.MaxPlayers {
		return nil, ErrTournamentFull()
	}

	var balance int64
	if t.EntryFee > 0 {
		balance, err = s.wallets.Debit(ctx, phone, t.EntryFee)
	} else {
		balance, err = s.wallets.Balance(ctx, phone)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.tournaments.AddPlayer(ctx, tournamentID, phone, t.MaxPlayers)
	if err != nil {
		if t.EntryFee > 0 {
			// The fee is already gone; put it back before reporting failure.
			if _, creditErr := s.wallets.Credit(ctx, phone, t.EntryFee); creditErr != nil {
				s.logger.Printf("CRITICAL: failed to refund %d to %s after join failure on %s: %v",
					t.EntryFee, phone, tournamentID, creditErr)
				return nil, fmt.Errorf("roster update failed and refund failed: %w", creditErr)
			}
		}
		if errors.Is(err, repositories.ErrRosterConflict) {
			// Another request won the race between our read and the append.
			if current, ferr := s.tournaments.FindByID(ctx, tournamentID); ferr == nil {
				for _, p := range current.Players {
					if p == phone {
						return nil, ErrAlreadyJoined()
					}
				}
			}
			return nil, ErrTournamentFull()
		}
		return nil, err
	}

	return &models.JoinTournamentResult{
		Tournament: s.viewOf(updated, s.now()),
		Balance:    balance,
	}, nil
}

// viewOf builds the client view of a tournament, with room credentials
// included only inside the 30-minute window before start.
func (s *TournamentService) viewOf(t *models.Tournament, now time.Time) models.TournamentView {
	view := models.TournamentView{
		ID:         t.ID,
		Game:       t.Game,
		EntryFee:   t.EntryFee,
		MaxPlayers: t.MaxPlayers,
		Players:    t.Players,
		StartTime:  t.StartTime,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if utils.ShowRoomDetails(t.StartTime, now) {
		view.RoomID = t.RoomID
		view.Password = t.Password
	}
	return view
}

// Get returns the time-gated client view of a tournament
func (s *TournamentService) Get(ctx context.Context, id string) (*models.TournamentView, error) {
	t, err := s.tournaments.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTournamentNotFound()
	}
	if err != nil {
		return nil, err
	}
	view := s.viewOf(t, s.now())
	return &view, nil
}

// Joined lists the tournaments phone has joined that are still active:
// up to 15 minutes past their start time. Room credentials follow the
// same visibility gate as single reads.
func (s *TournamentService) Joined(ctx context.Context, phone string) ([]models.TournamentView, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return nil, ErrInvalidPhone()
	}

	all, err := s.tournaments.FindByPlayer(ctx, phone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]models.TournamentView, 0, len(all))
	for _, t := range all {
		if utils.IsActiveForPlayer(t.StartTime, now) {
			active = append(active, s.viewOf(&t, now))
		}
	}
	return active, nil
}

// ListUpcoming returns tournaments that have not started yet. Upcoming
// tournaments are by definition outside the room-details window, so the
// views never carry credentials unless the start is under 30 minutes away.
func (s *TournamentService) ListUpcoming(ctx context.Context) ([]models.TournamentView, error) {
	all, err := s.tournaments.FindUpcoming(ctx, s.now())
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]models.TournamentView, 0, len(all))
	for _, t := range all {
		views = append(views, s.viewOf(&t, now))
	}
	return views, nil
}
