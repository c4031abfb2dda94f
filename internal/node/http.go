package node

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/logging"
)

// Server binds a Controller to the HTTP endpoints of spec §6, adapting the
// teacher's pkg/rpc/server.go (one handler per route) from net/http's bare
// mux to gorilla/mux so path parameters and method restriction are
// declarative. The teacher's {result, error} envelope is not kept: success
// bodies are written bare (see writeOK), and only errors are wrapped.
type Server struct {
	ctl    *Controller
	log    *logging.Logger
	router *mux.Router
}

// NewServer wires every route named in spec §6 to its Controller method.
func NewServer(ctl *Controller, log *logging.Logger) *Server {
	s := &Server{ctl: ctl, log: log, router: mux.NewRouter()}

	s.router.HandleFunc("/init_server/", s.handleInitServer).Methods(http.MethodPost)
	s.router.HandleFunc("/init_client/", s.handleInitClient).Methods(http.MethodPost)
	s.router.HandleFunc("/client_connect/", s.handleClientConnect).Methods(http.MethodPost)
	s.router.HandleFunc("/client_accepted/", s.handleClientAccepted).Methods(http.MethodPost)
	s.router.HandleFunc("/receive_transaction/", s.handleReceiveTransaction).Methods(http.MethodPost)
	s.router.HandleFunc("/receive_block/", s.handleReceiveBlock).Methods(http.MethodPost)
	s.router.HandleFunc("/create_transaction/", s.handleCreateTransaction).Methods(http.MethodPost)
	s.router.HandleFunc("/create_block/", s.handleCreateBlock).Methods(http.MethodPost)
	s.router.HandleFunc("/get_blockchain/", s.handleGetBlockchain).Methods(http.MethodGet)
	s.router.HandleFunc("/get_pending_transactions/", s.handleGetPending).Methods(http.MethodGet)
	s.router.HandleFunc("/get_balance/", s.handleGetBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/get_balance_latest/", s.handleGetBalanceLatest).Methods(http.MethodGet)
	s.router.HandleFunc("/get_stats/", s.handleGetStats).Methods(http.MethodGet)
	s.router.HandleFunc("/get_transactions/", s.handleGetTransactions).Methods(http.MethodGet)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// writeOK writes the success body for an endpoint exactly as spec §6
// documents it (e.g. `{blockchain:[...]}`, a bare `added`/`ok` string, or a
// balance map) — there is no enclosing envelope. writeErr is the only place
// that wraps, since §6 leaves the failure body otherwise unspecified beyond
// "body=error".
func writeOK(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErr(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) handleInitServer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NumParticipants int    `json:"num_participants"`
		Host            string `json:"host"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctl.InitServer(req.NumParticipants, req.Host); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]string{"token": s.ctl.Token()})
}

func (s *Server) handleInitClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host string `json:"host"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctl.InitClient(req.Host); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.ctl.ConnectToCoordinator(); err != nil {
		s.log.Warnf("client_connect to coordinator failed: %v", err)
	}
	writeOK(w, map[string]string{"token": s.ctl.Token()})
}

func (s *Server) handleClientConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host   string `json:"host"`
		PubKey string `json:"pubkey"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctl.ClientConnect(req.Host, req.PubKey); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, "connected")
}

func (s *Server) handleClientAccepted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID int                   `json:"participant_id"`
		Participants  []ledger.Participant  `json:"participants"`
		GenesisBlock  *ledger.Block         `json:"genesis_block"`
		GenesisUTXOs  ledger.UTXOSet        `json:"genesis_utxos"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctl.ClientAccepted(req.ParticipantID, req.Participants, req.GenesisBlock, req.GenesisUTXOs); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, "accepted")
}

func (s *Server) handleReceiveTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transaction *ledger.Transaction `json:"transaction"`
	}
	if !decode(w, r, &req) {
		return
	}
	status, err := s.ctl.ReceiveTransaction(req.Transaction)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, string(status))
}

func (s *Server) handleReceiveBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Block *ledger.Block `json:"block"`
	}
	if !decode(w, r, &req) {
		return
	}
	outcome := s.ctl.ReceiveBlock(req.Block)
	if outcome == "error" {
		writeErr(w, errOutcome(outcome))
		return
	}
	writeOK(w, string(outcome))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string  `json:"token"`
		Recipient string  `json:"recepient"`
		Amount    float64 `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	tx, err := s.ctl.CreateTransaction(req.Token, req.Recipient, ledger.AmountFromFloat(req.Amount))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, tx)
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token        string   `json:"token"`
		Transactions []string `json:"transactions"`
		Nonce        uint32   `json:"nonce"`
		Sha          string   `json:"sha"`
		Timestamp    string   `json:"timestamp"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctl.CreateBlockFromMiner(req.Token, req.Transactions, req.Nonce, req.Sha, req.Timestamp); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, "committed")
}

func (s *Server) handleGetBlockchain(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{"blockchain": s.ctl.GetBlockchain()})
}

func (s *Server) handleGetPending(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{"transactions": s.ctl.GetPendingTransactions()})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.ctl.BalancesCommitted())
}

func (s *Server) handleGetBalanceLatest(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.ctl.BalancesProvisional())
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.ctl.Stats())
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ctl.AllTransactions()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]interface{}{"transactions": txs})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, err)
		return false
	}
	return true
}

type errOutcome string

func (e errOutcome) Error() string { return "block rejected: " + string(e) }
