// Package main inspects a LevelUp Badger database: key counts per namespace,
// the top ledger entries, and a ledger consistency check against the
// per-server contribution rows.
//
// Usage:
//
//	DB_PATH=~/LevelUp/data/db go run ./cmd/dbinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/levelupapp/levelup-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/LevelUp/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	progressCount := countPrefix(db, "progress:")
	configCount := countPrefix(db, "server_config:")

	ledger := map[string]int64{}
	scanJSON(db, "ledger:", func(key string, entry domain.LedgerEntry) {
		ledger[entry.UserID] = entry.TotalXP
	})

	// contrib:<serverID>:<userID> -> latest reported server total
	contribTotals := map[string]int64{}
	servers := map[string]bool{}
	scanJSON(db, "contrib:", func(key string, c domain.ServerContribution) {
		contribTotals[c.UserID] += c.XP
		servers[c.ServerID] = true
	})

	fmt.Printf("Progress records: %d\n", progressCount)
	fmt.Printf("Ledger entries:   %d\n", len(ledger))
	fmt.Printf("Servers tracked:  %d\n", len(servers))
	fmt.Printf("Server configs:   %d\n", configCount)
	fmt.Println()

	// Top of the global leaderboard.
	type row struct {
		userID string
		total  int64
	}
	rows := make([]row, 0, len(ledger))
	for userID, total := range ledger {
		rows = append(rows, row{userID, total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].userID < rows[j].userID
	})

	fmt.Println("=== Top Ledger Entries ===")
	for i, r := range rows {
		if i >= 10 {
			fmt.Printf("... and %d more users\n", len(rows)-10)
			break
		}
		fmt.Printf("%2d. %s  %d XP\n", i+1, r.userID, r.total)
	}
	fmt.Println()

	// Every ledger total must equal the sum of that user's contribution rows.
	fmt.Println("=== Consistency Check ===")
	mismatches := 0
	for userID, total := range ledger {
		if contribTotals[userID] != total {
			mismatches++
			fmt.Printf("MISMATCH %s: ledger=%d contributions=%d\n",
				userID, total, contribTotals[userID])
		}
	}
	for userID := range contribTotals {
		if _, ok := ledger[userID]; !ok {
			mismatches++
			fmt.Printf("ORPHANED contributions for %s: %d XP with no ledger entry\n",
				userID, contribTotals[userID])
		}
	}
	if mismatches == 0 {
		fmt.Println("OK: every ledger entry matches its contribution rows")
	} else {
		fmt.Printf("%d inconsistencies found\n", mismatches)
	}
}

// countPrefix counts keys under one namespace without decoding values.
func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// scanJSON decodes every value under a prefix into T and hands it to fn.
func scanJSON[T any](db *badger.DB, prefix string, fn func(key string, value T)) {
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(val []byte) error {
				var value T
				if err := json.Unmarshal(val, &value); err != nil {
					return err
				}
				fn(strings.TrimPrefix(key, prefix), value)
				return nil
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}
}
