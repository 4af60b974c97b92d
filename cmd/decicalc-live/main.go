// Command decicalc-live serves one sheet over WebSocket (liveserver),
// optionally backed by the same library loading and external-lookup wiring
// as the batch decicalc command.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"decicalc/eventbus"
	"decicalc/extsource"
	"decicalc/interpreter"
	"decicalc/liveserver"
	"decicalc/persistence"
	"decicalc/stdlib"
)

type stderrLogger struct{}

func (stderrLogger) Log(text string) { log.Println(text) }

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	sheetfile := flag.String("sheetfile", "untitled.html", "sheet file to load at startup")
	dsn := flag.String("db", "", "Postgres DSN for the DbLookup builtin (optional)")
	busAddr := flag.String("bus", "", "ZeroMQ PUB address for the Publish builtin (optional)")
	var libraries stringList
	flag.Var(&libraries, "l", "additional Backwards library file (repeatable)")
	flag.Parse()

	builtins := stdlib.New()
	if *dsn != "" {
		builtins.AttachSource(extsource.New(*dsn))
	}
	if *busAddr != "" {
		bus, err := eventbus.Listen(*busAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decicalc-live: %v\n", err)
			os.Exit(1)
		}
		defer bus.Close()
		builtins.AttachBus(bus)
	}

	s, err := persistence.LoadFile(*sheetfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decicalc-live: loading %s: %v\n", *sheetfile, err)
		os.Exit(1)
	}

	ctx := interpreter.NewCallingContext(s, builtins, stderrLogger{}, 0)
	if err := stdlib.LoadLibraries(ctx, libraries); err != nil {
		fmt.Fprintf(os.Stderr, "decicalc-live: %v\n", err)
		os.Exit(1)
	}

	srv := liveserver.New(s, ctx)
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "decicalc-live: %v\n", err)
		os.Exit(1)
	}
}

type stringList []string

func (l *stringList) String() string { return fmt.Sprint([]string(*l)) }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
