package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"citrine/internal/common"
	"citrine/internal/sstable"
	"citrine/internal/wal"
)

func dumpIterator(iter common.EntryIterator) {
	fmt.Printf("%-6s %-20s %10s  %s\n", "OP", "KEY", "SEQ", "VALUE")
	fmt.Println()

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

		key := string(entry.Key)
		if len(key) > 20 {
			key = key[:20]
		}

		if entry.Type.IsTombstone() {
			fmt.Printf("%-6s %-20s %10d\n", entry.Type, key, entry.Seq)
		} else {
			fmt.Printf("%-6s %-20s %10d  %s\n", entry.Type, key, entry.Seq, string(entry.Value))
		}
	}

	fmt.Println()
	fmt.Printf("Total entries: %d\n", count)
}

func dumpWAL(path string) {
	fmt.Printf("Dumping WAL: %s\n", path)
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
	dumpIterator(iter)
}

func dumpSSTable(path string) {
	fmt.Printf("Dumping SSTable: %s\n", path)
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

	dumpIterator(table.Iterator())
}

func dumpFile(path string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".log":
		dumpWAL(path)
	case ".sst":
		dumpSSTable(path)
	default:
		fmt.Printf("unknown file type: %s (expected .log or .sst)\n", filepath.Ext(path))
	}
}

// fileNoFromPath parses the file number out of a path like
// "sstable/0/123.sst".
func fileNoFromPath(path string) (common.FileNo, error) {
	filename := filepath.Base(path)
	fileNoStr := strings.TrimSuffix(filename, filepath.Ext(filename))
	var fileNo common.FileNo
	if _, err := fmt.Sscanf(fileNoStr, "%d", &fileNo); err != nil {
		return 0, fmt.Errorf("failed to parse file number from %s: %w", filename, err)
	}
	return fileNo, nil
}
