package main

import (
	"fmt"
	"os"

	"github.com/campusshelf/campusshelf/pkg/isbn"
	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
)

func main() {
	log := logger.New()

	var opts struct {
		Quiet bool `short:"q" long:"quiet" description:"Only set the exit code, print nothing"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) == 0 {
		fmt.Println("go run ./cmd/scripts/check-isbn <isbn> [isbn...]")
		os.Exit(1)
	}

	invalid := 0
	for _, arg := range args {
		normalized := isbn.Normalize(arg)
		kind := isbn.DetectType(arg)
		if kind == isbn.TypeUnknown {
			invalid++
		}
		if opts.Quiet {
			continue
		}
		if kind == isbn.TypeUnknown {
			fmt.Printf("%q -> %s: invalid\n", arg, normalized)
			continue
		}
		fmt.Printf("%q -> %s: valid %s\n", arg, normalized, kind)
	}

	if invalid > 0 {
		os.Exit(2)
	}
}
