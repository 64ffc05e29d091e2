package main

import (
	"os"

	"github.com/somnia-sleep/somnia/app"
	"github.com/somnia-sleep/somnia/report"
)

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	if err := run(os.Args); err != nil {
		report.Quit(err)
	}
}
