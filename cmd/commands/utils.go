package commands

import (
	"os"

	"postbridge/pkg/logger"
)

func ExitOnError(err error) {
	logger.Error("postbridge error", "err", err.Error())
	os.Exit(1)
}
