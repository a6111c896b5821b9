package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"citrine/internal/common"
	"citrine/internal/sstable"
	"citrine/internal/wal"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.log|file.sst>\n", os.Args[0])
		os.Exit(1)
	}

	path := os.Args[1]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".log":
		inspectWAL(path)
	case ".sst":
		inspectSSTable(path)
	default:
		fmt.Fprintf(os.Stderr, "unknown file type: %s (expected .log or .sst)\n", filepath.Ext(path))
		os.Exit(1)
	}
}

func inspectWAL(path string) {
	fmt.Printf("Inspecting WAL: %s\n", path)
	fmt.Println()

	w, err := wal.OpenWAL(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open WAL: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	iter, err := w.Iterator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create iterator: %v\n", err)
		os.Exit(1)
	}

	count := 0
	for {
		entry, err := iter.Next()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading entry: %v\n", err)
			os.Exit(1)
		}
		if entry == nil {
			break
		}
		count++
	}

	fmt.Printf("Total entries: %d\n", count)
}

func inspectSSTable(path string) {
	fmt.Printf("Inspecting SSTable: %s\n", path)
	fmt.Println()

	filename := filepath.Base(path)
	fileNoStr := strings.TrimSuffix(filename, ".sst")
	var fileNo common.FileNo
	if _, err := fmt.Sscanf(fileNoStr, "%d", &fileNo); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse file number from %s: %v\n", filename, err)
		os.Exit(1)
	}

	table, err := sstable.NewSSTable(path, fileNo, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open SSTable: %v\n", err)
		os.Exit(1)
	}
	defer table.Close()

	index := table.Index()
	fmt.Printf("Total blocks: %d\n", len(index))
	fmt.Println()
	fmt.Println("Index entries (first key of each block):")
	for i, entry := range index {
		fmt.Printf("Block %d: offset=%d key=%q\n", i, entry.Offset, string(entry.FirstKey))
	}
	fmt.Println()

	for _, g := range table.Properties() {
		fmt.Printf("[%s]\n", string(g.Collector))
		for _, p := range g.Properties {
			fmt.Printf("  %s = %s\n", string(p.Name), string(p.Value))
		}
	}
}
