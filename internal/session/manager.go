package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yo-safe/terminal/internal/performance"
	"github.com/yo-safe/terminal/internal/transfer"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

const recordTimeout = 5 * time.Second

// Operations are the collaborators shared by every session.
type Operations struct {
	Approve transfer.Operation
	Deposit transfer.Operation
	Redeem  transfer.Operation
}

type Recorder interface {
	RecordTransfer(ctx context.Context, e performance.Entry) error
}

type ObserverFactory interface {
	Observer() transfer.Observer
}

type Config struct {
	MaxSessions int `envconfig:"MAX_SESSIONS" default:"1000"`
	Transfer    transfer.Config
}

type Manager struct {
	logger   *logrus.Logger
	ops      Operations
	owner    ecommon.Address
	cfg      Config
	recorder Recorder
	metrics  ObserverFactory

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager builds a session manager acting for owner. recorder and metrics
// may be nil.
func NewManager(
	logger *logrus.Logger,
	ops Operations,
	owner ecommon.Address,
	cfg Config,
	recorder Recorder,
	metrics ObserverFactory,
) *Manager {
	return &Manager{
		logger:   logger,
		ops:      ops,
		owner:    owner,
		cfg:      cfg,
		recorder: recorder,
		metrics:  metrics,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	s := &Session{
		ID:        uuid.New(),
		Owner:     m.owner,
		CreatedAt: time.Now().UTC(),
	}
	s.deposit = transfer.NewController(
		m.controllerLogger(s, FlowDeposit),
		m.ops.Approve,
		m.ops.Deposit,
		m.cfg.Transfer,
		m.observer(s),
	)
	// redeem is a single step, no approval collaborator
	s.withdraw = transfer.NewController(
		m.controllerLogger(s, FlowWithdraw),
		nil,
		m.ops.Redeem,
		m.cfg.Transfer,
		m.observer(s),
	)
	m.sessions[s.ID] = s

	m.logger.WithFields(logrus.Fields{
		"session": s.ID.String(),
		"owner":   s.Owner.Hex(),
	}).Info("session created")
	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Close abandons both flows of the session and forgets it.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.close()
	m.logger.WithField("session", id.String()).Info("session closed")
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session and waits for in-flight operations to return.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	for _, s := range sessions {
		s.wait()
	}
}

func (m *Manager) controllerLogger(s *Session, flow Flow) *logrus.Entry {
	return m.logger.WithFields(logrus.Fields{
		"session": s.ID.String(),
		"flow":    string(flow),
	})
}

func (m *Manager) observer(s *Session) transfer.Observer {
	var observers []transfer.Observer
	if m.metrics != nil {
		observers = append(observers, m.metrics.Observer())
	}
	if m.recorder != nil {
		observers = append(observers, m.recordSucceeded(s))
	}

	return func(req transfer.Request, st transfer.State) {
		for _, o := range observers {
			o(req, st)
		}
	}
}

func (m *Manager) recordSucceeded(s *Session) transfer.Observer {
	return func(req transfer.Request, st transfer.State) {
		if st.Phase != transfer.PhaseSucceeded {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		err := m.recorder.RecordTransfer(ctx, performance.NewEntry(s.ID, req, st))
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"session": s.ID.String(),
				"txHash":  st.TxHash,
			}).WithError(err).Error("failed to record transfer")
		}
	}
}
