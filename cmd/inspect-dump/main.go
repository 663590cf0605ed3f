package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/logger"
)

// inspect-dump prints the parsed projection of a dumped .eml file so a
// failing template can be diffed against its extractor's regexes.
func main() {
	log := logger.New()

	showHTML := flag.Bool("html", false, "Print the HTML body instead of the plaintext projection")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-html] <dump-file.eml>\n", os.Args[0])
		os.Exit(2)
	}

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Str("path", flag.Arg(0)).Msg("Failed to read dump file")
	}

	c := email.New(raw)
	fmt.Printf("Subject: %s\nSender:  %s\n\n", c.Title(), c.SenderAddress())

	if *showHTML {
		body, err := c.HTML()
		if err != nil {
			log.Fatal().Err(err).Msg("No HTML body")
		}
		fmt.Println(body)
		return
	}
	fmt.Println(c.Plaintext())
}
