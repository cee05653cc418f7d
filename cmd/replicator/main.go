// cmd/replicator/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tamzrod/ff7-replicator/internal/config"
)

const usage = `usage: replicator <config.yaml> [command] [args]

commands:
  run                              poll the game and serve the status block (default)
  state                            print one decoded state as JSON
  list [-category c] [-snowboard]  list save states
  capture [-title t] [-category c] [-snowboard]
  restore [-snowboard] [-index n] [id]  restore id, or the latest state
  remove [-snowboard] id...
  rename [-snowboard] id title
  move id anchor [-after]
  category id name
  clear [-snowboard]
  export file
  import file
  hack speed <x> | encounters <normal|off|max> | swirl|atb|unfocus <on|off>`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	cmd := "run"
	var args []string
	if len(os.Args) > 2 {
		cmd, args = os.Args[2], os.Args[3:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, cfg, cmd, args, os.Stdout); err != nil {
		stop()
		log.Fatalf("%s: %v", cmd, err)
	}
}

func dispatch(ctx context.Context, cfg *config.Config, cmd string, args []string, out io.Writer) error {
	if cmd == "state" {
		return cmdState(cfg, out)
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "run":
		return run(ctx, cfg, a)
	case "list":
		return cmdList(a, args, out)
	case "capture":
		return cmdCapture(a, args, out)
	case "restore":
		return cmdRestore(a, args, out)
	case "remove":
		return cmdRemove(a, args, out)
	case "rename":
		return cmdRename(a, args)
	case "move":
		return cmdMove(a, args)
	case "category":
		return cmdCategory(a, args)
	case "clear":
		return cmdClear(a, args)
	case "export":
		return cmdExport(a, args, out)
	case "import":
		return cmdImport(a, args, out)
	case "hack":
		return cmdHack(ctx, a, args, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}
