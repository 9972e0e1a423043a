package commands

import (
	"fmt"

	"postbridge"
)

const help = `postbridge %s

usage:
  postbridge run <config.yml>     start the file store http server
  postbridge watch <config.yml>   print ingestion events from the broker
  postbridge version              print the version
  postbridge help                 show this message
`

func HandleHelp(_ []string) {
	fmt.Printf(help, postbridge.StringVersion()) //nolint
}
