package main

import (
	"bufio"
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/cmd"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/spf13/viper"
)

const (
	ENV_CONFIG_FILE_PATH = "USER_CONFIG"
)

func main() {
	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	fmt.Printf("Bridge user configuration file = %s\n", _config_file)

	// See if file exists
	if !cmd.FileExists(_config_file) {
		fmt.Printf("Bridge user configuration file not found: %s\n", _config_file)
		return
	}

	// Read from config file.
	success := initializeViper(_config_file)
	if !success {
		return
	}

	bu, err := cmd.NewBridgeUser(PrepareBridgeUserConfig())
	if err != nil {
		fmt.Printf("Error creating bridge user: %s\n", err)
		return
	}

	fmt.Println(strings.Repeat("=", 30))
	fmt.Println("Welcome to bridge user command line tool.")
	fmt.Printf("Your account: %s\n", bu.Account())

	// *** user interactive program ***

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handler to catch Ctrl-C.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		_captured := <-sig
		fmt.Printf("\nReceived interrupt signal, shutting down... %v\n", _captured)
		cancel()
		os.Exit(0)
	}()

	// gather user inputs
	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Print options
		fmt.Println("What to do:")
		fmt.Println("1) View balance")
		fmt.Println("2) Mint to myself (dev custodian key only)")
		fmt.Println("3) Burn to a BTC address")
		fmt.Println("4) View a burn event")
		fmt.Print("Type option and press Enter: ")

		// Wait for input.
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		// Process user input.
		switch input {
		case "1":
			_balance, err := bu.GetBalance()
			if err != nil {
				fmt.Printf("Error getting balance: %s\n", err)
			} else {
				fmt.Printf("Your balance: %s, next burn nonce: %d\n", _balance.Free, _balance.Nonce)
			}
		case "2":
			amount, ok := askAmount(scanner)
			if !ok {
				break
			}
			claim, res, err := bu.RequestMint(amount)
			if err != nil {
				fmt.Printf("Error submitting mint: %s\n", err)
				break
			}
			fmt.Printf("Mint %s, signature %s\n", res.Result, common.Shorten(claim.Signature.String(), 8))
		case "3":
			fmt.Print("Enter BTC address to release to: ")
			scanner.Scan()
			btcAddr := strings.TrimSpace(scanner.Text())
			amount, ok := askAmount(scanner)
			if !ok {
				break
			}
			id, err := bu.BurnToBtc(btcAddr, amount)
			if err != nil {
				fmt.Printf("Error burning: %s\n", err)
			} else {
				fmt.Printf("Burn recorded, event id %d\n", id)
			}
		case "4":
			fmt.Print("Enter burn event id: ")
			scanner.Scan()
			id, err := strconv.ParseUint(strings.TrimSpace(scanner.Text()), 10, 32)
			if err != nil {
				fmt.Printf("Invalid id: %s\n", err)
				break
			}
			ev, err := bu.GetBurnEvent(agreement.BurnEventId(id))
			if err != nil {
				fmt.Printf("Error getting burn event: %s\n", err)
			} else {
				fmt.Printf("Burn %d at height %d: %s to %s\n", ev.Id, ev.Height, ev.Amount, ev.Destination)
			}
		default:
			fmt.Println("Unknown option, try again.")
		}
		fmt.Println()
	}
}

func askAmount(scanner *bufio.Scanner) (*big.Int, bool) {
	fmt.Print("Enter amount: ")
	scanner.Scan()
	amount, err := common.ParseU128(strings.TrimSpace(scanner.Text()))
	if err != nil {
		fmt.Printf("Invalid amount: %s\n", err)
		return nil, false
	}
	return amount, true
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

func PrepareBridgeUserConfig() *cmd.BridgeUserConfig {
	return &cmd.BridgeUserConfig{
		HttpIp:         viper.GetString("HTTP_IP"),
		HttpPort:       viper.GetString("HTTP_PORT"),
		UserSeed:       viper.GetString("USER_SEED"),
		CustodianPriv:  viper.GetString("CUSTODIAN_PRIV"),
		AssetId:        viper.GetString("ASSET_ID"),
		BtcChainConfig: common.BtcChainParams(viper.GetString("BTC_CHAIN_CONFIG")),
	}
}
