package cmd

import (
	"os"
)

// FileExists reports whether filePath can be opened for reading.
func FileExists(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()
	return true
}
