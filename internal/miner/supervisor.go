package miner

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/logging"
)

// Supervisor owns the lifecycle of the single external miner process a node
// may have running at a time (spec §4.5 supervision contract). It tracks
// only the pid; the miner process holds no shared memory with the
// controller and reports success solely via the create_block HTTP
// callback.
type Supervisor struct {
	mu         sync.Mutex
	cmd        *exec.Cmd
	binaryPath string
	log        *logging.Logger
}

// NewSupervisor creates a supervisor that launches binaryPath (the
// noobcash-miner executable) as needed.
func NewSupervisor(binaryPath string, log *logging.Logger) *Supervisor {
	return &Supervisor{binaryPath: binaryPath, log: log}
}

// Running reports whether a miner process is currently tracked as alive.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive()
}

func (s *Supervisor) alive() bool {
	if s.cmd == nil || s.cmd.Process == nil {
		return false
	}
	// Signal 0 probes liveness without affecting the process (spec §4.5:
	// "if the saved pid is alive, it is a no-op").
	err := s.cmd.Process.Signal(syscall.Signal(0))
	return err == nil
}

// Start launches the miner over `transactions` with the given participant
// id (nonce seed), node base URL and token, unless one is already running
// (idempotent, spec §4.5 "start()").
func (s *Supervisor) Start(selfHost, token string, participantID, difficulty int, transactions []*ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive() {
		return nil
	}

	txJSON, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("marshal miner batch: %w", err)
	}

	cmd := exec.Command(s.binaryPath,
		"--parent", selfHost,
		"--token", token,
		"--participant-id", fmt.Sprintf("%d", participantID),
		"--difficulty", fmt.Sprintf("%d", difficulty),
	)
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(), "NOOBCASH_MINER_BATCH="+string(txJSON))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start miner: %w", err)
	}
	s.cmd = cmd
	s.log.WithField("pid", cmd.Process.Pid).Info("miner started")

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// Stop sends SIGTERM to the tracked process, tolerating "no such process"
// (spec §4.5 "stop()").
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		return
	}
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.log.Debugf("stop miner: %v (likely already exited)", err)
	}
	s.cmd = nil
}

// StartIfNeeded starts the miner only when the pending pool has reached
// capacity (spec §4.5 "start_if_needed()").
func (s *Supervisor) StartIfNeeded(pendingLen, capacity int, selfHost, token string, participantID, difficulty int, batch []*ledger.Transaction) error {
	if pendingLen < capacity {
		return nil
	}
	return s.Start(selfHost, token, participantID, difficulty, batch)
}
