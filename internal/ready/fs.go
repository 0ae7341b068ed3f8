package ready

import "os"

func statExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
