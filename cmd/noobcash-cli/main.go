// Command noobcash-cli is the operator's interactive client, adapted from
// the teacher's cmd/bitcoin-cli/main.go: a flag for the node's base URL, a
// command-dispatch switch, one handler per command, plain POST/GET against
// the node's HTTP endpoints.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	nodeAddr := flag.String("node", "http://localhost:5000", "node base URL")
	flag.Parse()

	command := flag.Arg(0)
	switch command {
	case "init-server":
		handleInitServer(*nodeAddr)
	case "init-client":
		handleInitClient(*nodeAddr)
	case "balance":
		handleBalance(*nodeAddr)
	case "balance-latest":
		handleBalanceLatest(*nodeAddr)
	case "send":
		handleSend(*nodeAddr)
	case "chain":
		handleChain(*nodeAddr)
	case "pending":
		handlePending(*nodeAddr)
	case "stats":
		handleStats(*nodeAddr)
	default:
		fmt.Printf("unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("noobcash-cli")
	fmt.Println("\nUsage:")
	fmt.Println("  noobcash-cli [-node <url>] <command> [args...]")
	fmt.Println("\nCommands:")
	fmt.Println("  init-server <n>                 bootstrap as coordinator of n participants")
	fmt.Println("  init-client                     bootstrap as a peer")
	fmt.Println("  balance                         committed balances")
	fmt.Println("  balance-latest                   provisional balances")
	fmt.Println("  send <token> <recipient> <amt>  create and broadcast a transaction")
	fmt.Println("  chain                            print the committed chain")
	fmt.Println("  pending                          print the pending pool")
	fmt.Println("  stats                            print node counters")
}

func handleInitServer(addr string) {
	if flag.NArg() < 2 {
		fmt.Println("usage: init-server <num_participants>")
		os.Exit(1)
	}
	n, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		fmt.Printf("invalid num_participants: %v\n", err)
		os.Exit(1)
	}
	printResult(post(addr+"/init_server/", map[string]interface{}{
		"num_participants": n, "host": addr,
	}))
}

func handleInitClient(addr string) {
	printResult(post(addr+"/init_client/", map[string]interface{}{"host": addr}))
}

func handleBalance(addr string) {
	printResult(get(addr + "/get_balance/"))
}

func handleBalanceLatest(addr string) {
	printResult(get(addr + "/get_balance_latest/"))
}

func handleSend(addr string) {
	if flag.NArg() < 4 {
		fmt.Println("usage: send <token> <recipient-pubkey> <amount>")
		os.Exit(1)
	}
	token := flag.Arg(1)
	recipient := flag.Arg(2)
	amount, err := strconv.ParseFloat(flag.Arg(3), 64)
	if err != nil {
		fmt.Printf("invalid amount: %v\n", err)
		os.Exit(1)
	}
	printResult(post(addr+"/create_transaction/", map[string]interface{}{
		"token": token, "recepient": recipient, "amount": amount,
	}))
}

func handleChain(addr string) {
	printResult(get(addr + "/get_blockchain/"))
}

func handlePending(addr string) {
	printResult(get(addr + "/get_pending_transactions/"))
}

func handleStats(addr string) {
	printResult(get(addr + "/get_stats/"))
}

func post(url string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func get(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func printResult(body []byte, err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
