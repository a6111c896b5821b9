package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"citrine/internal/db"
	"citrine/internal/props"
)

func main() {
	dir := flag.String("dir", "citrine_data", "database directory")
	configPath := flag.String("config", "", "YAML config file")
	verbose := flag.Bool("v", false, "log engine diagnostics to stderr")
	flag.Parse()

	options := []db.Option{
		db.WithPropertyCollectors(props.EntryStatsFactory),
	}
	if *configPath != "" {
		cfg, err := db.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		configOptions, err := cfg.Options()
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad config: %v\n", err)
			os.Exit(1)
		}
		// Config replaces the default collector set.
		options = configOptions
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		options = append(options, db.WithLogger(logger))
	}

	engine, err := db.Open(*dir, options...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Println("cdb - citrine database")
	fmt.Printf("dir: %s\n", *dir)
	fmt.Println("commands: put <key> <value> | get <key> | delete <key> | seed <x> | flush | compact | dump <file> | inspect <file> | history [n] | exit")

	hist, err := newHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
	}

	seedIndex := loadSeedIndex(engine)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if hist != nil {
			hist.add(line)
		}

		parts := strings.Fields(line)
		switch strings.ToLower(parts[0]) {
		case "put":
			if len(parts) != 3 {
				fmt.Println("usage: put <key> <value>")
				continue
			}
			if err := engine.Put([]byte(parts[1]), []byte(parts[2])); err != nil {
				fmt.Printf("put error: %v\n", err)
				continue
			}
			fmt.Println("ok")
		case "get":
			if len(parts) != 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			value, ok, err := engine.Get([]byte(parts[1]))
			if err != nil {
				fmt.Printf("get error: %v\n", err)
				continue
			}
			if !ok {
				fmt.Println("(not found)")
				continue
			}
			fmt.Printf("%s\n", string(value))
		case "delete":
			if len(parts) != 2 {
				fmt.Println("usage: delete <key>")
				continue
			}
			if err := engine.Delete([]byte(parts[1])); err != nil {
				fmt.Printf("delete error: %v\n", err)
				continue
			}
			fmt.Println("ok")
		case "seed":
			if len(parts) != 2 {
				fmt.Println("usage: seed <x>")
				continue
			}
			x, err := strconv.Atoi(parts[1])
			if err != nil || x < 1 {
				fmt.Println("seed: x must be a positive integer")
				continue
			}
			runSeed(engine, x, &seedIndex)
		case "flush":
			if err := engine.Flush(); err != nil {
				fmt.Printf("flush error: %v\n", err)
				continue
			}
			fmt.Println("ok")
		case "compact":
			flagged := engine.TablesNeedingCompact()
			if len(flagged) == 0 {
				fmt.Println("no tables flagged for compaction")
				continue
			}
			for _, meta := range flagged {
				fmt.Printf("file %d: %d entries, %d bytes, keys [%q, %q]\n",
					meta.FileNo, meta.EntryCount, meta.Size,
					string(meta.SmallestKey), string(meta.LargestKey))
			}
		case "dump":
			if len(parts) != 2 {
				fmt.Println("usage: dump <file.log|file.sst>")
				continue
			}
			dumpFile(parts[1])
		case "inspect":
			if len(parts) != 2 {
				fmt.Println("usage: inspect <file.log|file.sst>")
				continue
			}
			inspectFile(parts[1])
		case "history":
			n := 0
			if len(parts) == 2 {
				n, _ = strconv.Atoi(parts[1])
			}
			if hist != nil {
				for _, cmd := range hist.list(n) {
					fmt.Println(cmd)
				}
			}
		case "exit", "quit":
			if hist != nil {
				if err := hist.save(); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to save history: %v\n", err)
				}
			}
			return
		default:
			fmt.Println("unknown command")
		}
	}

	if hist != nil {
		_ = hist.save()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
	}
}
