package main

import (
	"fmt"

	"github.com/TEENet-io/renbridge-go/cmd"
	"github.com/TEENet-io/renbridge-go/logconfig"
	"github.com/spf13/viper"
)

const (
	ENV_CONFIG_FILE_PATH = "BRIDGE_CONFIG"
)

func main() {
	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	fmt.Printf("Bridge server configuration file = %s\n", _config_file)

	// See if file exists
	if !cmd.FileExists(_config_file) {
		fmt.Printf("Bridge server configuration file not found: %s\n", _config_file)
		return
	}

	// Read from config file.
	success := initializeViper(_config_file)
	if !success {
		return
	}

	if err := logconfig.ConfigLoggerByName(viper.GetString("LOG_LEVEL")); err != nil {
		fmt.Printf("Error setting log level: %s\n", err)
		return
	}

	// Make the configuration
	bsc := PrepareBridgeServerConfig()

	fmt.Println("Starting bridge server... press Ctrl+C to kill the server")
	// Start server and block.
	cmd.StartBridgeServerAndWait(bsc)
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

// PrepareBridgeServerConfig reads configuration variables and returns a BridgeServerConfig.
func PrepareBridgeServerConfig() *cmd.BridgeServerConfig {
	return &cmd.BridgeServerConfig{
		// bridge side
		TrustedAddress:   viper.GetString("TRUSTED_ADDRESS"),
		AssetId:          viper.GetString("ASSET_ID"),
		UnsignedPriority: viper.GetUint64("UNSIGNED_PRIORITY"),
		Longevity:        viper.GetUint64("LONGEVITY"),
		// state side
		DbFilePath: viper.GetString("DB_FILE_PATH"),
		// dispatcher side
		RoundInterval:    viper.GetDuration("ROUND_INTERVAL"),
		MaxMintsPerRound: viper.GetInt("MAX_MINTS_PER_ROUND"),
		MaxPoolSize:      viper.GetInt("MAX_POOL_SIZE"),
		// Http side
		HttpIp:    viper.GetString("HTTP_IP"),
		HttpPort:  viper.GetString("HTTP_PORT"),
		RateLimit: viper.GetFloat64("RATE_LIMIT"),
	}
}
