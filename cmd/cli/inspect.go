package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"citrine/internal/sstable"
	"citrine/internal/wal"
)

func inspectFile(path string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".log":
		inspectWAL(path)
	case ".sst":
		inspectSSTable(path)
	default:
		fmt.Printf("unknown file type: %s (expected .log or .sst)\n", filepath.Ext(path))
	}
}

func inspectWAL(path string) {
	fmt.Printf("Inspecting WAL: %s\n", path)
	fmt.Println()

	w, err := wal.OpenWAL(path)
	if err != nil {
		fmt.Printf("failed to open WAL: %v\n", err)
		return
	}
	defer w.Close()

	iter, err := w.Iterator()
	if err != nil {
		fmt.Printf("failed to create iterator: %v\n", err)
		return
	}

	count := 0
	for {
		entry, err := iter.Next()
		if err != nil {
			fmt.Printf("error reading entry: %v\n", err)
			return
		}
		if entry == nil {
			break
		}
		count++
	}

	fmt.Printf("Total entries: %d\n", count)
	fmt.Println()
}

func inspectSSTable(path string) {
	fmt.Printf("Inspecting SSTable: %s\n", path)
	fmt.Println()

	fileNo, err := fileNoFromPath(path)
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}

	table, err := sstable.NewSSTable(path, fileNo, nil)
	if err != nil {
		fmt.Printf("failed to open SSTable: %v\n", err)
		return
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

	printProperties(table.Properties())
}

func printProperties(groups []sstable.PropertyGroup) {
	if len(groups) == 0 {
		fmt.Println("No table properties.")
		return
	}

	fmt.Println("Table properties:")
	for _, g := range groups {
		fmt.Printf("  [%s]\n", string(g.Collector))
		for _, p := range g.Properties {
			fmt.Printf("    %s = %s\n", string(p.Name), string(p.Value))
		}
	}
	fmt.Println()
}
