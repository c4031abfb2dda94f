// Command noobcash-miner is the isolated proof-of-work search process
// spawned and killed by a node's miner.Supervisor (spec §4.5). It is a
// thin, flag-and-env driven wrapper around miner.Search: the transaction
// batch arrives out-of-band via NOOBCASH_MINER_BATCH (JSON) rather than as
// a command-line argument, since a batch of signed transactions can exceed
// typical OS argv limits.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noobcash/noobcash-go/internal/blockengine"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/miner"
)

func main() {
	parent := flag.String("parent", "", "base URL of the parent node")
	token := flag.String("token", "", "authentication token for create_block")
	participantID := flag.Int("participant-id", 0, "this node's participant id (nonce seed)")
	difficulty := flag.Int("difficulty", 5, "required leading hex zeros")
	flag.Parse()

	if *parent == "" || *token == "" {
		fmt.Fprintln(os.Stderr, "noobcash-miner: --parent and --token are required")
		os.Exit(1)
	}

	batchJSON := os.Getenv("NOOBCASH_MINER_BATCH")
	var txs []*ledger.Transaction
	if err := json.Unmarshal([]byte(batchJSON), &txs); err != nil {
		fmt.Fprintf(os.Stderr, "noobcash-miner: invalid batch: %v\n", err)
		os.Exit(1)
	}

	transactions := make([]string, len(txs))
	for i, t := range txs {
		encoded, err := blockengine.EncodeTransaction(t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "noobcash-miner: encode transaction: %v\n", err)
			os.Exit(1)
		}
		transactions[i] = encoded
	}

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		close(stop)
	}()

	startNonce := miner.SeedNonce(*participantID)
	result, found := miner.Search(transactions, startNonce, *difficulty, stop, time.Now)
	if !found {
		// Killed mid-search (spec §4.5 "exits immediately on signal").
		os.Exit(0)
	}

	if err := submit(*parent, *token, result); err != nil {
		fmt.Fprintf(os.Stderr, "noobcash-miner: submit failed: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func submit(parent, token string, result *miner.Result) error {
	body := map[string]interface{}{
		"token":        token,
		"transactions": result.Transactions,
		"nonce":        result.Nonce,
		"sha":          result.Hash,
		"timestamp":    result.Timestamp,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(parent+"/create_block/", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create_block returned %s", resp.Status)
	}
	return nil
}
