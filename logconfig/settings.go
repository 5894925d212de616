package logconfig

import (
	myLogger "github.com/sirupsen/logrus"
)

// This output format is used in the test (has terminal).
func ConfigDebugLogger() {
	myLogger.SetReportCaller(true)
	myLogger.SetLevel(myLogger.DebugLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

func ConfigInfoLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// This output format is used in production.
func ConfigProductionLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.JSONFormatter{})
}

// ConfigLoggerByName picks a preset from a config value: "debug", "info"
// or "production". Any other logrus level name sets that level on the
// production format. Empty means info.
func ConfigLoggerByName(name string) error {
	switch name {
	case "debug":
		ConfigDebugLogger()
	case "", "info":
		ConfigInfoLogger()
	case "production":
		ConfigProductionLogger()
	default:
		level, err := myLogger.ParseLevel(name)
		if err != nil {
			return err
		}
		ConfigProductionLogger()
		myLogger.SetLevel(level)
	}
	return nil
}
