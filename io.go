package tomo

import "os"

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func workingDirectory() (string, error) {
	return os.Getwd()
}
